package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"sessionctl/cli/internal/auth"
)

// spinnerFrames is the stick-style animation used for short waits.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner animates frames followed by text on a single line of w
// until the returned func is called. The line is erased on stop.
func startInlineSpinner(w io.Writer, text string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		width := len(text) + 2
		for i := 0; ; i++ {
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", width, "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], text)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// displayName picks the friendliest identifier of u.
func displayName(u auth.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.UserID
	}
}

var loginGreetings = []string{
	"🎉 Welcome back, %s!",
	"✨ Great to see you, %s!",
	"🚀 You're all set, %s!",
	"🔓 Access granted! Welcome %s!",
	"🎯 You're in, %s!",
}

// loginGreeting returns a random greeting for identifier.
func loginGreeting(identifier string) string {
	return fmt.Sprintf(loginGreetings[rand.Intn(len(loginGreetings))], identifier)
}

func printNotLoggedIn(w io.Writer) {
	fmt.Fprintln(w, "🔒 You're not logged in yet!")
	fmt.Fprintln(w, "   Run 'sessionctl login' to get started.")
}
