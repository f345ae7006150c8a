package gormstore

import "time"

func windowWhere(since, until time.Time) []gormWhereParams {
	where := []gormWhereParams{}
	if !since.IsZero() {
		where = append(where, gormWhereParams{query: "timestamp >= ?", extraArgs: []any{since.UTC()}})
	}

	if !until.IsZero() {
		where = append(where, gormWhereParams{query: "timestamp <= ?", extraArgs: []any{until.UTC()}})
	}

	return where
}
