// Package main is a smoke-test utility that verifies the gateway's HTTP API
// is reachable and returning valid responses. It issues a real HTTP request to
// the multi-channel details endpoint for a well-known package and prints the
// status code and response body, making it useful for quick post-deployment
// checks without needing external tooling like curl or a full integration
// test suite.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	base := os.Getenv("SNIFF_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	pkg := "com.discord"
	if len(os.Args) > 1 {
		pkg = os.Args[1]
	}

	resp, err := http.Get(base + "/v1/details/" + pkg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading body: %v\n", err)
		return
	}

	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("X-Available-Channels: %s\n", resp.Header.Get("X-Available-Channels"))
	fmt.Printf("Response:\n%s\n", string(body))
}
