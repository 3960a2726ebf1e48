package cluster

import "os"

func mkdir(path string) error {
	return os.MkdirAll(path, 0755)
}
