package builder

import (
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/sqlite"
)

func init() {
	sqlite.Register()
}
