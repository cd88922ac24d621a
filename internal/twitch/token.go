// SPDX-License-Identifier: MPL-2.0

package twitch

import (
	"bufio"
	"os"
	"strings"

	"syncbin-cli/internal/config"
)

const (
	streamlinkConfig = "streamlink/config"
	tokenKey         = "twitch-oauth-token="
)

// ReadAccessToken returns the streamlink Twitch OAuth token from the first
// streamlink config file, or "" when there is none.
func ReadAccessToken() (string, error) {
	path, ok := config.FindConfig(streamlinkConfig)
	if !ok {
		return "", nil
	}
	return readTokenFile(path)
}

func readTokenFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if token, ok := strings.CutPrefix(sc.Text(), tokenKey); ok {
			return token, nil
		}
	}
	return "", sc.Err()
}
