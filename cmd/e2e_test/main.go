package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := "http://localhost:8080"
	if v := os.Getenv("E2E_BASE_URL"); v != "" {
		baseURL = v
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	checkEndpoint(baseURL, "/health", 200)

	body := checkEndpoint(baseURL, "/snapshot", 200)
	var snap map[string]any
	if err := json.Unmarshal(body, &snap); err != nil {
		log.Fatalf("snapshot is not JSON: %v", err)
	}
	for _, k := range []string{"portfolio", "grand_total", "profit", "funds", "activity", "last_update"} {
		if _, ok := snap[k]; !ok {
			log.Fatalf("snapshot missing %q", k)
		}
	}

	checkEndpoint(baseURL, "/portfolio", 200)
	checkEndpoint(baseURL, "/activity", 200)
	checkEndpoint(baseURL, "/nope", 404)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(baseURL, path string, expectedStatus int) []byte {
	fmt.Printf("Testing GET %s...\n", path)
	resp, err := http.Get(baseURL + path)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return respBody
}
