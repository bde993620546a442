package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("EXAMPLANNER_TEST_MODE") == "" {
			_ = os.Setenv("EXAMPLANNER_TEST_MODE", "1")
		}
	})
}
