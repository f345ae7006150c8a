package models

type BrokerState string

const (
	BrokerDisconnected BrokerState = "disconnected"
	BrokerConnecting   BrokerState = "connecting"
	BrokerConnected    BrokerState = "connected"
	BrokerReconnecting BrokerState = "reconnecting"
)

type BrokerInfo struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Protocol  string `json:"protocol"`
	ClientID  string `json:"clientId"`
	Namespace string `json:"namespace"`
	QoS       byte   `json:"qos"`
}

type BrokerStats struct {
	Received  uint64 `json:"received"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

type BrokerStatus struct {
	Connected bool        `json:"connected"`
	State     BrokerState `json:"state"`
	Config    BrokerInfo  `json:"config"`
	Stats     BrokerStats `json:"stats"`
}

type AvailabilityStatus struct {
	Available bool `json:"available"`
}

type GatewayStatus struct {
	Broker         BrokerStatus       `json:"broker"`
	HTTP           AvailabilityStatus `json:"http"`
	DataProcessing AvailabilityStatus `json:"dataProcessing"`
}
