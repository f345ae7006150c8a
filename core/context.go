package core

const (
	LamassuContextKeyRequestID string = "lamassu.io/ctx/request-id"
	LamassuContextKeySource    string = "lamassu.io/ctx/source"
	LamassuContextKeyTenant    string = "lamassu.io/ctx/tenant"

	LamassuContextKeyEventType    string = "lamassu.io/ctx/cloudevent/type"
	LamassuContextKeyEventSubject string = "lamassu.io/ctx/cloudevent/subject"
)
