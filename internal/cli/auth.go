package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/lockbox/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a profile name, an avatar tag and a password, and
// creates a new vault profile. Several profiles may share a name; which one
// a later login resolves to is decided by the password alone.
//
// The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter profile name", os.Stdout)
	if err != nil {
		return err
	}

	avatarTag, err := getSimpleText(a.reader, "Enter avatar tag", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, name, avatarTag, password); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for a profile name and password and tries to authenticate.
// On success it keeps the returned master key and vault id in memory for
// the session. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter profile name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, masterKey, err := a.authService.Authenticate(ctx, name, password)
	if err != nil {
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}

	a.forgetSession()
	a.masterKey = masterKey
	a.vaultID = p.ID
	a.profileName = p.Name
	log.Printf("Login successfull")
	return nil
}

// Logout removes the in-memory master key and session state.
func (a *App) Logout(ctx context.Context) error {
	a.forgetSession()
	return nil
}

// Wipe deletes the authenticated vault with everything it owns, after an
// explicit confirmation, and ends the session.
func (a *App) Wipe(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete this vault and all its objects? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Cancelled")
		return nil
	}

	if err := a.authService.DeleteVault(ctx, a.vaultID); err != nil {
		return err
	}

	a.forgetSession()
	fmt.Println("Vault deleted")
	return nil
}
