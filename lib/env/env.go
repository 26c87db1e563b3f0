package env

import (
	"os"
	"strconv"
)

func Test() bool {
	return os.Getenv("TEST_MODE") != ""
}

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

func Timeout() (int, bool) {
	if s := os.Getenv("PIXELFLIP_TIMEOUT"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return int(i), true
		}
	}
	return -1, false
}
