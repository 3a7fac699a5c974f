// Package cli implements the terminal surfaces: the interactive
// menu-driven shell and the flag-based maintenance subcommands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aniping/aniping/internal/auth"
	"github.com/aniping/aniping/internal/database/watchlist"
	"github.com/aniping/aniping/internal/entities"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/tracker"
)

// ANSI color codes for menu styling.
const (
	colorHeader = "\033[95m"
	colorBlue   = "\033[94m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorRed    = "\033[91m"
	colorEnd    = "\033[0m"
)

var divider = colorBlue + strings.Repeat("=", 50) + colorEnd

// Menu is the interactive terminal shell. Input and output are injected so
// the whole flow is scriptable in tests.
type Menu struct {
	in      *bufio.Scanner
	out     io.Writer
	auth    *auth.Service
	tracker *tracker.Service
}

// NewMenu creates the interactive shell.
func NewMenu(in io.Reader, out io.Writer, authService *auth.Service, trackerService *tracker.Service) *Menu {
	return &Menu{
		in:      bufio.NewScanner(in),
		out:     out,
		auth:    authService,
		tracker: trackerService,
	}
}

// Run drives the pre-login menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.header("Welcome to AniPing")
		fmt.Fprintln(m.out, "1. Create Account")
		fmt.Fprintln(m.out, "2. Login")
		fmt.Fprintln(m.out, "3. View Top Anime")
		fmt.Fprintln(m.out, "4. Exit")
		fmt.Fprintln(m.out, divider)

		choice, ok := m.prompt("Enter your choice: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			m.createAccount()
		case "2":
			if user := m.login(); user != nil {
				if err := m.postLogin(ctx, user); err != nil {
					return err
				}
			}
		case "3":
			m.topAnime(ctx)
		case "4":
			fmt.Fprintln(m.out, "Exiting AniPing. Goodbye!")
			return nil
		default:
			m.warn("Invalid option. Please try again.")
		}
	}
}

func (m *Menu) createAccount() {
	m.header("Create Account")
	username, ok := m.prompt("Username: ")
	if !ok {
		return
	}
	email, ok := m.prompt("Email: ")
	if !ok {
		return
	}
	password, ok := m.prompt("Password: ")
	if !ok {
		return
	}

	_, err := m.auth.CreateAccount(username, email, password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		m.fail(fmt.Sprintf("An account for %s already exists.", email))
	case err != nil:
		m.fail("Account creation failed: " + err.Error())
	default:
		m.success("Account created successfully. Please login to continue.")
	}
}

func (m *Menu) login() *entities.User {
	m.header("User Login")
	email, ok := m.prompt("Email: ")
	if !ok {
		return nil
	}
	password, ok := m.prompt("Password: ")
	if !ok {
		return nil
	}

	user, err := m.auth.Authenticate(email, password)
	switch {
	case errors.Is(err, auth.ErrEmailNotFound):
		m.fail("Email not found. Please create an account.")
		return nil
	case errors.Is(err, auth.ErrWrongPassword):
		m.fail("Wrong password. Please try again.")
		return nil
	case err != nil:
		m.fail("Login failed, please retry: " + err.Error())
		return nil
	}

	m.success("Login successful!")
	fmt.Fprintf(m.out, "Welcome back, %s!\n", user.Username)
	return user
}

func (m *Menu) postLogin(ctx context.Context, user *entities.User) error {
	for {
		m.header("User Menu - Logged in as " + user.Username)
		fmt.Fprintln(m.out, "1. Add Anime to Watch List")
		fmt.Fprintln(m.out, "2. View Watch List")
		fmt.Fprintln(m.out, "3. Edit Watch List")
		fmt.Fprintln(m.out, "4. Logout")
		fmt.Fprintln(m.out, divider)

		choice, ok := m.prompt("Enter your choice: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			m.addToWatchList(ctx, user.ID)
		case "2":
			m.viewWatchList(user.ID)
		case "3":
			m.editWatchList(user.ID)
		case "4":
			fmt.Fprintln(m.out, "Logging out...")
			return nil
		default:
			m.warn("Invalid choice, please try again.")
		}
	}
}

func (m *Menu) addToWatchList(ctx context.Context, userID uint) {
	m.header("Add Anime to Watch List")
	malID, ok := m.promptInt("Enter Anime ID to add: ")
	if !ok {
		return
	}

	err := m.tracker.AddToWatchList(ctx, userID, malID, 0, entities.StatusWatching)
	switch {
	case errors.Is(err, watchlist.ErrAlreadyExists):
		m.warn("Anime already in watch list.")
	case errors.Is(err, jikan.ErrNotFound):
		m.fail(fmt.Sprintf("No anime found with ID %d.", malID))
	case err != nil:
		m.fail("Could not add anime, please retry: " + err.Error())
	default:
		m.success("Anime added successfully to your watch list.")
	}
}

func (m *Menu) viewWatchList(userID uint) {
	m.header("Your Watch List")
	entries, err := m.tracker.WatchList(userID)
	if err != nil {
		m.fail("Could not load watch list, please retry: " + err.Error())
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(m.out, "Your watch list is empty.")
		return
	}

	for _, entry := range entries {
		total := "?"
		if entry.Anime.Episodes != nil {
			total = strconv.Itoa(*entry.Anime.Episodes)
		}
		fmt.Fprintf(m.out, "%-8d %-40s %s (%d/%s episodes)\n",
			entry.MALID, entry.Anime.DisplayTitle(), entry.Status, entry.EpisodesWatched, total)
	}
}

func (m *Menu) editWatchList(userID uint) {
	m.header("Edit Watch List")
	malID, ok := m.promptInt("Enter the Anime ID to update: ")
	if !ok {
		return
	}
	episodes, ok := m.promptInt("Enter new episodes watched: ")
	if !ok {
		return
	}
	statusInput, ok := m.prompt("Enter new status (e.g., Watching, Completed): ")
	if !ok {
		return
	}

	err := m.tracker.UpdateWatchList(userID, malID, episodes, entities.WatchStatus(statusInput))
	switch {
	case errors.Is(err, watchlist.ErrNotFound):
		m.warn("No matching record found. Update skipped.")
	case errors.Is(err, watchlist.ErrInvalidStatus):
		m.warn("Unknown status. Valid: Watching, Completed, Dropped, Re-watching, On-Hold, Plan to Watch.")
	case errors.Is(err, watchlist.ErrNegativeEpisodes):
		m.warn("Episodes watched cannot be negative.")
	case err != nil:
		m.fail("Could not update watch list, please retry: " + err.Error())
	default:
		m.success("Watch list updated successfully.")
	}
}

func (m *Menu) topAnime(ctx context.Context) {
	m.header("Top Anime")
	list, err := m.tracker.TopAnime(ctx, 10)
	if err != nil {
		m.fail("Could not fetch top anime, please retry: " + err.Error())
		return
	}
	for i, a := range list {
		fmt.Fprintf(m.out, "%2d. %s (id %d, score %.2f)\n", i+1, a.Title, a.MALID, a.Score)
	}
}

// prompt reads one trimmed line; ok is false when input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// promptInt keeps asking until it gets a valid non-negative integer.
func (m *Menu) promptInt(label string) (int, bool) {
	for {
		text, ok := m.prompt(label)
		if !ok {
			return 0, false
		}
		value, err := strconv.Atoi(text)
		if err != nil || value < 0 {
			m.warn("Invalid numeric input. Please try again.")
			continue
		}
		return value, true
	}
}

func (m *Menu) header(title string) {
	fmt.Fprintf(m.out, "%s\n%s%s%s\n%s\n", divider, colorHeader, title, colorEnd, divider)
}

func (m *Menu) success(msg string) {
	fmt.Fprintln(m.out, colorGreen+msg+colorEnd)
}

func (m *Menu) warn(msg string) {
	fmt.Fprintln(m.out, colorYellow+msg+colorEnd)
}

func (m *Menu) fail(msg string) {
	fmt.Fprintln(m.out, colorRed+msg+colorEnd)
}
