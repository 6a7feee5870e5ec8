package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/assistant/v1"

// Simplified DTOs for the script
type createSessionRequest struct {
	Language string `json:"language,omitempty"`
	Consent  struct {
		ProfileRetention bool `json:"profile_retention"`
	} `json:"consent"`
}

type createSessionResponse struct {
	Data struct {
		SessionId string `json:"session_id"`
		Greeting  string `json:"greeting"`
		State     string `json:"state"`
	} `json:"data"`
}

type turnRequest struct {
	SessionId string `json:"session_id"`
	Utterance string `json:"utterance"`
}

type turnResponse struct {
	Data struct {
		ResponseText string   `json:"response_text"`
		State        string   `json:"state"`
		Suggestions  []string `json:"suggestions"`
		Ended        bool     `json:"ended"`
	} `json:"data"`
}

func main() {
	userColor := color.New(color.FgCyan, color.Bold)
	botColor := color.New(color.FgGreen)
	stateColor := color.New(color.FgYellow, color.Faint)

	fmt.Println("=== Assistant Simulation Client ===")
	fmt.Println("Type an utterance and press Enter. Ctrl+D to quit.")

	sess, err := createSession()
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("Session Created: %s\n\n", sess.Data.SessionId)
	botColor.Printf("ASSISTANT: %s\n", sess.Data.Greeting)
	stateColor.Printf("  [%s]\n", sess.Data.State)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		userColor.Print("YOU: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		start := time.Now()
		reply, err := sendTurn(sess.Data.SessionId, text)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		botColor.Printf("ASSISTANT (%v): %s\n", elapsed.Round(time.Millisecond), reply.Data.ResponseText)
		if len(reply.Data.Suggestions) > 0 {
			stateColor.Printf("  [%s] suggestions: %s\n", reply.Data.State, strings.Join(reply.Data.Suggestions, " | "))
		} else {
			stateColor.Printf("  [%s]\n", reply.Data.State)
		}

		if reply.Data.Ended {
			fmt.Println("\nSession ended by the assistant. Bye!")
			return
		}
	}
}

func createSession() (*createSessionResponse, error) {
	var payload createSessionRequest
	payload.Consent.ProfileRetention = true
	jsonBytes, _ := json.Marshal(payload)

	resp, err := http.Post(baseURL+"/sessions", "application/json", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func sendTurn(sessionID, text string) (*turnResponse, error) {
	payload := turnRequest{
		SessionId: sessionID,
		Utterance: text,
	}
	jsonBytes, _ := json.Marshal(payload)

	resp, err := http.Post(baseURL+"/turns", "application/json", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res turnResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
