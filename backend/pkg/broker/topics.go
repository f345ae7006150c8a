package broker

import (
	"fmt"
	"strings"
)

type Route string

const (
	RouteSensorData       Route = "data"
	RouteEquipmentMetrics Route = "metrics"
	RouteDeviceStatus     Route = "status"
	RouteDeviceCommands   Route = "commands"
)

// collection segment expected right before the device id for each route
var routeCollections = map[Route]string{
	RouteSensorData:       "sensors",
	RouteEquipmentMetrics: "equipment",
	RouteDeviceStatus:     "devices",
	RouteDeviceCommands:   "devices",
}

func SubscriptionTopics(namespace string) []string {
	return []string{
		fmt.Sprintf("%s/sensors/+/data", namespace),
		fmt.Sprintf("%s/equipment/+/metrics", namespace),
		fmt.Sprintf("%s/devices/+/status", namespace),
		fmt.Sprintf("%s/devices/+/commands", namespace),
	}
}

func CommandTopic(namespace, deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/commands", namespace, deviceID)
}

// ParseTopic reads the route and device id from the end of the topic, so the
// namespace may contain any number of levels.
func ParseTopic(topic string) (string, Route, error) {
	segments := strings.Split(topic, "/")
	if len(segments) < 3 {
		return "", "", fmt.Errorf("topic '%s' has too few levels", topic)
	}

	route := Route(segments[len(segments)-1])
	deviceID := segments[len(segments)-2]
	collection := segments[len(segments)-3]

	expected, ok := routeCollections[route]
	if !ok {
		return "", "", fmt.Errorf("topic '%s' has unknown suffix '%s'", topic, route)
	}

	if collection != expected {
		return "", "", fmt.Errorf("topic '%s' does not match %s/<id>/%s", topic, expected, route)
	}

	if deviceID == "" || deviceID == "+" || deviceID == "#" {
		return "", "", fmt.Errorf("topic '%s' has no device id", topic)
	}

	return deviceID, route, nil
}
