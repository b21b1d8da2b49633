package node

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Record captures how an instance was provisioned. It is written into the
// instance directory after a successful lifecycle run and is informational
// only; later runs never read it to change behavior.
type Record struct {
	RunID         string    `json:"run_id"`        // Deploy run this instance was created in
	Instance      int       `json:"instance"`      // 1-based instance index
	Port          string    `json:"port"`          // Port handed to gaianet config
	ConfigURL     string    `json:"config_url"`    // Remote config used for init
	InstallerTag  string    `json:"installer_tag"` // Release tag of install.sh
	ProvisionedAt time.Time `json:"provisioned_at"`
}

const recordFileName = ".gaianet-deploy.json"

// SaveRecord writes the record to .gaianet-deploy.json in the instance dir.
func SaveRecord(dir string, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, recordFileName), data, 0o644)
}

// LoadRecord reads the record back, returning nil when none exists.
func LoadRecord(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, recordFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
