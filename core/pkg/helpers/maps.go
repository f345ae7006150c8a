package helpers

// MergeMaps returns a new map holding every entry of the given maps. Later
// maps win on key collisions. Nil maps are skipped.
func MergeMaps[K comparable, V any](maps ...map[K]V) map[K]V {
	mout := map[K]V{}
	for _, m := range maps {
		for key, val := range m {
			mout[key] = val
		}
	}
	return mout
}
