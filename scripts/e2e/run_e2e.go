// Package main runs smoke scenarios against a running scheduler API.
//
// Each scenario books into a far-future slot and cancels what it created, so
// it is safe to point at a shared calendar.
//
// Usage:
//
//	API_BASE_URL=... [TOOLS_JWT_SECRET=...] go run scripts/e2e/run_e2e.go [scenario-name]
package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

var (
	apiBase string
	token   string
	client  = &http.Client{Timeout: 30 * time.Second}
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

type toolReply struct {
	Status        int
	Tool          string `json:"tool"`
	Outcome       string `json:"outcome"`
	Message       string `json:"message"`
	Value         any    `json:"value"`
	AppointmentID string `json:"appointment_id"`
}

func do(method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, apiBase+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func callTool(name string, args map[string]any) (toolReply, error) {
	status, raw, err := do(http.MethodPost, "/tools/"+name, args)
	if err != nil {
		return toolReply{}, err
	}
	var out toolReply
	if err := json.Unmarshal(raw, &out); err != nil {
		return toolReply{}, fmt.Errorf("decode %s reply (%d): %w: %s", name, status, err, string(raw))
	}
	out.Status = status
	return out, nil
}

func generateJWT(secret string) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "e2e",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(secret))
}

// farSlot picks a date well past any real bookings; the offset varies per run
// so repeated runs do not collide on a leftover event.
func farSlot() (date, clock string) {
	now := time.Now()
	days := 300 + int(now.Unix()/60%60)
	hour := 9 + int(now.Unix()%8)
	return now.AddDate(0, 0, days).Format("2006-01-02"), fmt.Sprintf("%02d:00", hour)
}

func bookArgs(date, clock string) map[string]any {
	return map[string]any{
		"patient_name":  "E2E Patient",
		"patient_phone": "+920000000000",
		"date":          date,
		"time":          clock,
		"doctor_key":    "general dentistry",
		"service_key":   "Cleaning",
	}
}

func scenarioHealth(t *T) {
	status, body, err := do(http.MethodGet, "/health", nil)
	if err != nil {
		t.fatalf("health: %v", err)
		return
	}
	t.check("health returns 200", status == http.StatusOK)
	t.check("health reports ok", bytes.Contains(body, []byte(`"ok"`)))
}

func scenarioListTools(t *T) {
	status, raw, err := do(http.MethodGet, "/tools/", nil)
	if err != nil {
		t.fatalf("list tools: %v", err)
		return
	}
	t.check("list returns 200", status == http.StatusOK)
	for _, name := range []string{"list_doctors_and_services", "current_time_date", "check_doctor_availability", "book_appointment", "cancel_appointment"} {
		t.check("lists "+name, bytes.Contains(raw, []byte(`"`+name+`"`)))
	}

	catalog, err := callTool("list_doctors_and_services", nil)
	if err != nil {
		t.fatalf("catalog: %v", err)
		return
	}
	t.check("catalog names a doctor", strings.Contains(catalog.Message, "Dr."))
}

func scenarioBookCheckCancel(t *T) {
	date, clock := farSlot()
	booked, err := callTool("book_appointment", bookArgs(date, clock))
	if err != nil {
		t.fatalf("book: %v", err)
		return
	}
	t.check("booking succeeds", booked.Status == http.StatusOK && booked.Outcome == "ok")
	t.check("booking returns an appointment id", booked.AppointmentID != "")
	if booked.AppointmentID == "" {
		return
	}
	defer func() {
		cancelled, err := callTool("cancel_appointment", map[string]any{"appointment_id": booked.AppointmentID})
		if err != nil {
			t.fatalf("cancel: %v", err)
			return
		}
		t.check("cancel succeeds", cancelled.Outcome == "ok")
	}()

	start := date + "T" + clock + ":00"
	check, err := callTool("check_doctor_availability", map[string]any{
		"doctor_name": "Dr.Badr",
		"start_time":  start,
		"end_time":    date + "T" + clock[:2] + ":15:00",
	})
	if err != nil {
		t.fatalf("check: %v", err)
		return
	}
	t.check("booked slot reads as busy", check.Value == false)

	again, err := callTool("book_appointment", bookArgs(date, clock))
	if err != nil {
		t.fatalf("rebook: %v", err)
		return
	}
	t.check("double booking is refused with 409", again.Status == http.StatusConflict && again.Outcome == "slot_taken")
}

func scenarioValidation(t *T) {
	date, clock := farSlot()

	args := bookArgs(date, clock)
	args["doctor_key"] = "Dr.Nobody"
	bad, err := callTool("book_appointment", args)
	if err != nil {
		t.fatalf("book: %v", err)
		return
	}
	t.check("unknown doctor is 422", bad.Status == http.StatusUnprocessableEntity && bad.Outcome == "invalid_doctor")
	t.check("unknown doctor lists alternatives", strings.Contains(bad.Message, "Available doctors"))

	past, err := callTool("book_appointment", bookArgs("2001-01-01", "10:00"))
	if err != nil {
		t.fatalf("book: %v", err)
		return
	}
	t.check("past slot is 422", past.Status == http.StatusUnprocessableEntity && past.Outcome == "in_the_past")

	missing, err := callTool("cancel_appointment", map[string]any{"appointment_id": "does-not-exist-e2e"})
	if err != nil {
		t.fatalf("cancel: %v", err)
		return
	}
	t.check("unknown appointment is 404", missing.Status == http.StatusNotFound)
}

func scenarioVoiceWebhook(t *T) {
	status, raw, err := do(http.MethodPost, "/webhooks/voice/tools", map[string]any{
		"event_type": "tool_call",
		"payload": map[string]any{
			"tool_call_id": "e2e-call",
			"tool_name":    "current_time_date",
		},
	})
	if err != nil {
		t.fatalf("voice webhook: %v", err)
		return
	}
	var out struct {
		ToolCallID string `json:"tool_call_id"`
		Response   string `json:"response"`
	}
	_ = json.Unmarshal(raw, &out)
	t.check("voice webhook returns 200", status == http.StatusOK)
	t.check("voice webhook echoes the call id", out.ToolCallID == "e2e-call")
	_, perr := time.Parse(time.RFC3339, out.Response)
	t.check("voice webhook speaks a timestamp", perr == nil)
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}
	if secret := os.Getenv("TOOLS_JWT_SECRET"); secret != "" {
		var err error
		if token, err = generateJWT(secret); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: sign token: %v\n", err)
			os.Exit(1)
		}
	}

	scenarios := []scenario{
		{"health", scenarioHealth},
		{"list-tools", scenarioListTools},
		{"book-check-cancel", scenarioBookCheckCancel},
		{"validation", scenarioValidation},
		{"voice-webhook", scenarioVoiceWebhook},
	}

	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed := 0
	totalFailed := 0
	scenarioResults := make([]string, 0)

	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}

		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{name: s.Name}
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed

		status := "PASS"
		if t.failed > 0 {
			status = "FAIL"
		}
		scenarioResults = append(scenarioResults, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range scenarioResults {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		fmt.Println("\nSOME SCENARIOS FAILED")
		os.Exit(1)
	}
	fmt.Println("\nALL SCENARIOS PASSED")
}
