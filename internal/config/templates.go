package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o644)
}

const Template = `# corrcheck configuration; every key is optional.
corrections_dir = "corrections"
extension = ".json"
base_ref = "origin/master"

global_marker = "_global"
online_tag = "ONLINE"
dev_marker = "_dev"
workers = 1

# Raw-content mirror consulted when git history has no baseline.
# remote_base_url = "https://raw.githubusercontent.com/XAMS-nikhef/amstrax_files"
remote_ref = "master"
remote_timeout = "10s"

data_dir = "data"
# metrics_textfile = "/var/lib/node_exporter/textfile/corrcheck.prom"
`
