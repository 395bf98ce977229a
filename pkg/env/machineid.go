package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const machineIDApp = "cellular"

// MachineID retrieves an ID identifying the machine, hashed with the
// application name so the raw ID is not exposed.
func MachineID() string {
	id, err := machineid.ProtectedID(machineIDApp)
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return machineIDApp
	}
	return id[:12]
}
