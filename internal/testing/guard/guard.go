// Package guard forces test mode before any package under test can
// observe the environment.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("NIAXTU_TEST_MODE") == "" {
			_ = os.Setenv("NIAXTU_TEST_MODE", "1")
		}
	})
}
