// Command opm is an offline password manager. It keeps credential records in
// a single encrypted file and drives them through a numbered menu.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"github.com/1mdazam/OfflinePasswordManager/auth"
	"github.com/1mdazam/OfflinePasswordManager/internal/audit"
	"github.com/1mdazam/OfflinePasswordManager/internal/service"
	"github.com/1mdazam/OfflinePasswordManager/internal/vault"
	"github.com/1mdazam/OfflinePasswordManager/krypto"
	"github.com/1mdazam/OfflinePasswordManager/store"
)

const cliVersion = "1.0.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "generate":
			handleError(runGenerate(args[1:]))
			return
		case "version":
			fmt.Println(cliVersion)
			return
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	handleError(runMenu(args))
}

// handleError reports err and exits through memguard so enclave buffers are
// wiped even on the failure paths.
func handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		memguard.SafeExit(1)
	}

	fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
	memguard.SafeExit(2)
}

func runMenu(args []string) error {
	fs := flag.NewFlagSet("opm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var storePath string
	var auditPath string
	fs.StringVar(&storePath, "store", store.DefaultFilename, "path to the encrypted store file")
	fs.StringVar(&auditPath, "audit", "", "append audit events to this file")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments; run 'opm help'"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	log := audit.Nop()
	if auditPath != "" {
		fileLog, err := audit.NewFileLogger(auditPath)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer fileLog.Close()
		log = fileLog
	}

	svc := service.New(storePath, log)
	reader := bufio.NewScanner(os.Stdin)

	if _, err := os.Stat(storePath); err == nil {
		pw, err := promptSecret(reader, "Enter master password: ")
		if err != nil {
			return fmt.Errorf("read master password: %w", err)
		}
		svc.SetMaster(pw)
		if err := svc.Load(); err != nil {
			return userError{msg: "Error: " + friendlyMessage(err)}
		}
		fmt.Printf("Loaded %d entries.\n", svc.Count())
	} else if errors.Is(err, os.ErrNotExist) {
		pw, err := promptSecret(reader, "Create master password: ")
		if err != nil {
			return fmt.Errorf("read master password: %w", err)
		}
		for _, warning := range auth.CheckMasterPassword(string(pw)) {
			fmt.Println("Warning: " + warning)
		}
		svc.SetMaster(pw)
		if err := svc.Save(); err != nil {
			return userError{msg: "Error: " + friendlyMessage(err)}
		}
		fmt.Println("New store created!")
		log.Record("store_created", audit.Fields{"path": storePath})
	} else {
		return fmt.Errorf("stat store file: %w", err)
	}

	return menuLoop(svc, reader, log)
}

func menuLoop(svc *service.Service, reader *bufio.Scanner, log audit.Logger) error {
	for {
		fmt.Println("\nMenu: 1) Add  2) List  3) Find  4) Delete  5) Save & Exit  6) Exit")
		fmt.Print("Choice: ")

		line, ok := readLine(reader)
		if !ok {
			if err := reader.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Println()
			fmt.Println("Exited without saving.")
			log.Record("session_end", audit.Fields{"saved": false})
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			menuAdd(svc, reader)
		case "2":
			menuList(svc)
		case "3":
			menuFind(svc, reader)
		case "4":
			menuDelete(svc, reader)
		case "5":
			if err := svc.Save(); err != nil {
				fmt.Println("Error: " + friendlyMessage(err))
				continue
			}
			fmt.Println("Saved.")
			log.Record("session_end", audit.Fields{"saved": true})
			return nil
		case "6":
			fmt.Println("Exited without saving.")
			log.Record("session_end", audit.Fields{"saved": false})
			return nil
		default:
			fmt.Println("Invalid choice.")
		}
	}
}

func menuAdd(svc *service.Service, reader *bufio.Scanner) {
	site := promptLine(reader, "Site: ")
	username := promptLine(reader, "Username: ")
	secret := promptLine(reader, "Password: ")
	notes := promptLine(reader, "Notes: ")

	svc.Add(vault.Record{Site: site, Username: username, Secret: secret, Notes: notes})
	fmt.Println("Added successfully!")
}

func menuList(svc *service.Service) {
	refs := svc.List()
	if len(refs) == 0 {
		fmt.Println("[No entries]")
		return
	}
	for _, ref := range refs {
		fmt.Printf("%d. %s\n", ref.Index, ref.Site)
	}
}

func menuFind(svc *service.Service, reader *bufio.Scanner) {
	fmt.Print("Enter site name or keyword: ")
	query, _ := readLine(reader)

	found := svc.Search(query)
	if len(found) == 0 {
		fmt.Println("No matches found.")
		return
	}
	for _, r := range found {
		fmt.Println("----")
		printRecord(r)
	}
}

func menuDelete(svc *service.Service, reader *bufio.Scanner) {
	menuList(svc)
	input := promptLine(reader, "Enter index to delete (0 to cancel): ")

	index, err := strconv.Atoi(input)
	if err != nil {
		fmt.Println("Cancelled or invalid.")
		return
	}
	if err := svc.Remove(index); err != nil {
		fmt.Println("Cancelled or invalid.")
		return
	}
	fmt.Println("Deleted successfully.")
}

func printRecord(r vault.Record) {
	fmt.Printf("Site: %s\nUsername: %s\nPassword: %s\n", r.Site, r.Username, r.Secret)
	if r.Notes != "" {
		fmt.Printf("Notes: %s\n", r.Notes)
	}
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var length int
	var noSymbols bool
	fs.IntVar(&length, "length", krypto.DefaultPasswordLength, "password length")
	fs.BoolVar(&noSymbols, "no-symbols", false, "exclude symbol characters")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid generate arguments; run 'opm help'"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	password, err := krypto.GeneratePassword(length, !noSymbols)
	if err != nil {
		return userError{msg: err.Error()}
	}

	fmt.Println(password)
	fmt.Fprintf(os.Stderr, "strength: %d/4\n", auth.StrengthScore(password))
	return nil
}

// friendlyMessage maps well-known failures to the wording shown to the user.
func friendlyMessage(err error) string {
	switch {
	case errors.Is(err, krypto.ErrDecrypt):
		return "wrong master password or corrupted store"
	case errors.Is(err, vault.ErrCorruptPayload):
		return "store contents are corrupted"
	case errors.Is(err, store.ErrInvalidFormat):
		return "not a valid password store file"
	case errors.Is(err, os.ErrNotExist):
		return "store file not found"
	}
	return err.Error()
}

// promptSecret reads the master password without echo when stdin is a
// terminal, falling back to a plain line read otherwise.
func promptSecret(reader *bufio.Scanner, prompt string) ([]byte, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, ok := readLine(reader)
	if !ok {
		if err := reader.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	return []byte(line), nil
}

func promptLine(reader *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	line, _ := readLine(reader)
	return strings.TrimSpace(line)
}

func readLine(reader *bufio.Scanner) (string, bool) {
	if !reader.Scan() {
		return "", false
	}
	return reader.Text(), true
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: opm [flags]")
	fmt.Fprintln(os.Stderr, "       opm generate [-length <n>] [-no-symbols]")
	fmt.Fprintln(os.Stderr, "       opm version")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -store <path>   encrypted store file (default "+store.DefaultFilename+")")
	fmt.Fprintln(os.Stderr, "  -audit <path>   append audit events to this file")
}
