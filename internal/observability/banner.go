package observability

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

var spinnerFrames = []string{"◜", "◝", "◞", "◟"}
var spinnerIdx = 0

// termMu synchronizes ALL terminal output so that the cursor
// save/restore in PrintLiveStatus can never be interrupted by a log write.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
// It serialises writes with PrintLiveStatus via termMu.
func NewTermWriter() *termWriter {
	return &termWriter{}
}

func PrintBanner() {
	fmt.Print("\033[2J\033[H")

	banner := `
    __ __ ____  _______  _____
   / //_// __ \/  _/\ \/ /   |
  / ,<  / /_/ // /   \  / /| |
 / /| |/ _, _// /    / / ___ |
/_/ |_/_/ |_/___/   /_/_/  |_|

    >> GOAL-DRIVEN TASK ENGINE <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

func InitializeTerminal() {
	// Header/Logo area: 1-8
	// Status line: 9
	// Scrolling logs: 11+
	fmt.Print("\033[11;r")  // Set scrolling region from line 11 to the bottom
	fmt.Print("\033[11;1H") // Move cursor to the start of the scrolling region
}

func CleanupTerminal() {
	fmt.Print("\033[r\033[2J\033[H")
}

// PrintLiveStatus redraws the single status line with phase, active
// goal, heartbeat health, uptime and memory use.
func PrintLiveStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime).Round(time.Second)
	memMB := float64(m.Alloc) / 1024 / 1024

	phase, goal, lastHB := GetStatus()

	pulse := "DOWN"
	pulseColor := colorNeonMag
	if delta := time.Since(lastHB); delta < 40*time.Second {
		pulse = "OK"
		pulseColor = colorNeonCyan
	} else if delta < 90*time.Second {
		pulse = "LAG"
		pulseColor = colorPurple
	}

	spinner := " "
	if phase != PhaseIdle {
		spinner = spinnerFrames[spinnerIdx]
		spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
	}

	displayGoal := goal
	if displayGoal == "" {
		displayGoal = "waiting..."
	}
	if len(displayGoal) > 32 {
		displayGoal = displayGoal[:29] + "..."
	}

	// Build the status string BEFORE locking, to minimise lock hold time.
	statusStr := fmt.Sprintf(
		"\033[s\033[9;1H\033[K%s[%s] %s%-4s%s | %s%-9s%s %s %s%s%s [%v] [%.1fMB]\033[u",
		colorReset,
		lastHB.Format("15:04:05"),
		pulseColor, pulse, colorReset,
		colorNeonCyan, phase, colorReset,
		displayGoal,
		colorPurple, spinner, colorReset,
		uptime,
		memMB,
	)

	termMu.Lock()
	fmt.Print(statusStr)
	termMu.Unlock()
}
