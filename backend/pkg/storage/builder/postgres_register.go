package builder

import (
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/postgres"
)

func init() {
	postgres.Register()
}
