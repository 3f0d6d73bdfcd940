package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// cmdCourse manages course progression
func cmdCourse(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Course commands:

  academy course start <id>             Start (or resume) a course
  academy course continue <id>          Show the item to continue with
  academy course complete <id> <item>   Mark an item completed`)
		return nil
	}

	switch args[0] {
	case "start":
		if len(args) < 2 {
			return fmt.Errorf("course ID required")
		}
		return cmdCourseStart(args[1])
	case "continue":
		if len(args) < 2 {
			return fmt.Errorf("course ID required")
		}
		return cmdCourseContinue(args[1])
	case "complete":
		if len(args) < 3 {
			return fmt.Errorf("course ID and item ID required")
		}
		return cmdCourseComplete(args[1], args[2])
	default:
		return fmt.Errorf("unknown course command: %s", args[0])
	}
}

func cmdCourseStart(id string) error {
	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'academy start' first)")
	}

	resp, err := http.Post(daemonAddr+"/v1/courses/"+id+"/start", "application/json", nil)
	if err != nil {
		return fmt.Errorf("start course: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var course domain.Course
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Printf("Course: %s\n", course.Title)
	if course.Progress != nil {
		fmt.Printf("Progress: %.0f%%\n", course.Progress.CompletionPercentage)
	}
	fmt.Printf("Items: %d\n\n", len(course.Items))
	for _, item := range course.Items {
		marker := " "
		if course.Progress != nil && contains(course.Progress.CompletedItemIDs, item.ID) {
			marker = "✓"
		}
		fmt.Printf("  [%s] %3d  %s %s\n", marker, item.ID, item.ContentType, itemTitle(&item))
	}

	return nil
}

func cmdCourseContinue(id string) error {
	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'academy start' first)")
	}

	resp, err := http.Get(daemonAddr + "/v1/courses/" + id + "/continue")
	if err != nil {
		return fmt.Errorf("continue course: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var item domain.CourseItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Printf("Next up: item %d (%s) %s\n", item.ID, item.ContentType, itemTitle(&item))
	if item.ContentType == domain.ContentExercise {
		fmt.Printf("\nOpen it with:\n  academy session open %s %d\n", id, item.ID)
	}

	return nil
}

func cmdCourseComplete(id, itemID string) error {
	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'academy start' first)")
	}

	url := fmt.Sprintf("%s/v1/courses/%s/items/%s/complete", daemonAddr, id, itemID)
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("complete item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var result struct {
		Completed bool               `json:"completed"`
		NextItem  *domain.CourseItem `json:"next_item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Println("Item completed ✓")
	if result.NextItem != nil {
		fmt.Printf("Next up: item %d (%s) %s\n", result.NextItem.ID, result.NextItem.ContentType, itemTitle(result.NextItem))
	} else {
		fmt.Println("That was the last item - course complete!")
	}

	return nil
}

func itemTitle(item *domain.CourseItem) string {
	switch {
	case item.Exercise != nil:
		return item.Exercise.Title
	case item.Video != nil:
		return item.Video.Title
	default:
		return ""
	}
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// decodeDaemonError turns a non-200 daemon response into an error
func decodeDaemonError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if body.Details != "" {
		return fmt.Errorf("%s: %s", body.Error, strings.TrimSpace(body.Details))
	}
	return fmt.Errorf("%s", body.Error)
}
