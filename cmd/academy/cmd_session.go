package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// sessionSnapshot mirrors the daemon's session representation
type sessionSnapshot struct {
	ID                string                   `json:"id"`
	CourseID          int64                    `json:"course_id"`
	ItemID            int64                    `json:"item_id"`
	State             string                   `json:"state"`
	Exercise          *domain.Exercise         `json:"exercise,omitempty"`
	Code              string                   `json:"code"`
	LastRun           *domain.ExecutionResult  `json:"last_run,omitempty"`
	LastSubmission    *domain.SubmissionResult `json:"last_submission,omitempty"`
	Solution          string                   `json:"solution,omitempty"`
	CompletionPending bool                     `json:"completion_pending"`
	NextItem          *domain.CourseItem       `json:"next_item,omitempty"`
}

// cmdSession manages exercise sessions
func cmdSession(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Session commands:

  academy session open <course> <item>  Open an exercise session
  academy session show <id>             Show session state
  academy session code <id> <file>      Load code into the session buffer
  academy session run <id>              Run the current buffer
  academy session submit <id>           Submit the current buffer for grading
  academy session solution <id>         Show the exercise solution
  academy session dismiss <id>          Dismiss the completion prompt
  academy session close <id>            Discard a session`)
		return nil
	}

	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'academy start' first)")
	}

	switch args[0] {
	case "open":
		if len(args) < 3 {
			return fmt.Errorf("course ID and item ID required")
		}
		return cmdSessionOpen(args[1], args[2])
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionShow(args[1])
	case "code":
		if len(args) < 3 {
			return fmt.Errorf("session ID and file required (use '-' for stdin)")
		}
		return cmdSessionCode(args[1], args[2])
	case "run":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionRun(args[1])
	case "submit":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionSubmit(args[1])
	case "solution":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionSolution(args[1])
	case "dismiss":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionDismiss(args[1])
	case "close":
		if len(args) < 2 {
			return fmt.Errorf("session ID required")
		}
		return cmdSessionClose(args[1])
	default:
		return fmt.Errorf("unknown session command: %s", args[0])
	}
}

func cmdSessionOpen(courseID, itemID string) error {
	payload := fmt.Sprintf(`{"course_id": %s, "item_id": %s}`, courseID, itemID)
	resp, err := http.Post(daemonAddr+"/v1/sessions", "application/json", strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeDaemonError(resp)
	}

	var snap sessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if snap.State == "load_failed" {
		fmt.Println("Could not load the exercise. Check your connection and try again.")
		fmt.Printf("Session: %s (state: %s)\n", snap.ID, snap.State)
		return nil
	}

	fmt.Printf("Session: %s\n\n", snap.ID)
	if snap.Exercise != nil {
		fmt.Printf("Exercise: %s (%s)\n", snap.Exercise.Title, snap.Exercise.LanguageDisplay)
		if snap.Exercise.Difficulty != "" {
			fmt.Printf("Difficulty: %s\n", snap.Exercise.Difficulty)
		}
		fmt.Printf("\n%s\n", snap.Exercise.Description)
	}
	fmt.Println("\nNext:")
	fmt.Printf("  academy session code %s solution.py   # load your code\n", snap.ID)
	fmt.Printf("  academy session run %s                # run it\n", snap.ID)

	return nil
}

func cmdSessionShow(id string) error {
	resp, err := http.Get(daemonAddr + "/v1/sessions/" + id)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var snap sessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Printf("Session: %s\n", snap.ID)
	fmt.Printf("State:   %s\n", snap.State)
	if snap.Exercise != nil {
		fmt.Printf("Exercise: %s (%s)\n", snap.Exercise.Title, snap.Exercise.Language)
	}
	if snap.CompletionPending {
		fmt.Println("\nExercise completed! 🎉")
		if snap.NextItem != nil {
			fmt.Printf("Next up: item %d (%s)\n", snap.NextItem.ID, snap.NextItem.ContentType)
		}
	}
	if snap.LastSubmission != nil {
		fmt.Printf("\nLast submission: %s\n", snap.LastSubmission.Message)
	}
	fmt.Printf("\n--- buffer ---\n%s\n", snap.Code)

	return nil
}

func cmdSessionCode(id, file string) error {
	var code []byte
	var err error
	if file == "-" {
		code, err = io.ReadAll(os.Stdin)
	} else {
		code, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("read code: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"code": string(code)})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, daemonAddr+"/v1/sessions/"+id+"/code", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("update code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	fmt.Println("Buffer updated ✓")
	return nil
}

func cmdSessionRun(id string) error {
	resp, err := http.Post(daemonAddr+"/v1/sessions/"+id+"/run", "application/json", nil)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var outcome struct {
		Superseded bool                    `json:"superseded"`
		Preview    bool                    `json:"preview"`
		Result     *domain.ExecutionResult `json:"result"`
		Output     string                  `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	switch {
	case outcome.Superseded:
		fmt.Println("Superseded by a newer run.")
	case outcome.Preview:
		fmt.Println("Preview refreshed. View it at:")
		fmt.Printf("  %s/v1/sessions/%s/preview\n", daemonAddr, id)
	default:
		fmt.Print(outcome.Output)
	}

	return nil
}

func cmdSessionSubmit(id string) error {
	resp, err := http.Post(daemonAddr+"/v1/sessions/"+id+"/submit", "application/json", nil)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var outcome struct {
		Superseded        bool                     `json:"superseded"`
		Result            *domain.SubmissionResult `json:"result"`
		CompletionPending bool                     `json:"completion_pending"`
		NextItem          *domain.CourseItem       `json:"next_item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if outcome.Superseded {
		fmt.Println("Superseded by a newer submission.")
		return nil
	}

	if outcome.Result != nil {
		fmt.Println(outcome.Result.Message)
		if outcome.Result.Feedback != "" {
			fmt.Printf("\nFeedback:\n%s\n", outcome.Result.Feedback)
		}
		if outcome.Result.Hint != "" {
			fmt.Printf("\nHint:\n%s\n", outcome.Result.Hint)
		}
	}

	if outcome.CompletionPending {
		fmt.Println("\nExercise completed! 🎉")
		if outcome.NextItem != nil {
			fmt.Printf("Next up: item %d (%s)\n", outcome.NextItem.ID, outcome.NextItem.ContentType)
		} else {
			fmt.Println("That was the last item in the course.")
		}
		fmt.Printf("Dismiss with: academy session dismiss %s\n", id)
	}

	return nil
}

func cmdSessionSolution(id string) error {
	resp, err := http.Post(daemonAddr+"/v1/sessions/"+id+"/solution", "application/json", nil)
	if err != nil {
		return fmt.Errorf("get solution: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var result struct {
		Solution string `json:"solution"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Println("Solution:")
	fmt.Println(result.Solution)

	// Close the solution view so run/submit work again
	req, err := http.NewRequest(http.MethodDelete, daemonAddr+"/v1/sessions/"+id+"/solution", nil)
	if err != nil {
		return nil
	}
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}

	return nil
}

func cmdSessionDismiss(id string) error {
	resp, err := http.Post(daemonAddr+"/v1/sessions/"+id+"/dismiss", "application/json", nil)
	if err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	fmt.Println("Dismissed ✓")
	return nil
}

func cmdSessionClose(id string) error {
	req, err := http.NewRequest(http.MethodDelete, daemonAddr+"/v1/sessions/"+id, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	fmt.Println("Session closed ✓")
	return nil
}
