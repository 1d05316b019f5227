package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dmitrijs2005/permalink/internal/client/batch"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
	"github.com/dmitrijs2005/permalink/internal/cryptox"
	"github.com/dmitrijs2005/permalink/internal/filex"
)

const defaultHistoryLimit = 10

// getPassword is a test seam for GetPassword.
var getPassword = GetPassword

// Connect opens a wallet session from args[0] or the configured key file
// and refreshes the candidate parent names.
func (a *App) Connect(ctx context.Context, args []string) error {
	path := a.config.KeyFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("%w: usage: connect <keyfile>", common.ErrInvalidArgument)
	}

	prompt := func() ([]byte, error) { return getPassword(a.out, "Key file passphrase") }
	session, closer, err := a.connect(ctx, path, prompt)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if a.closeSession != nil {
		a.closeSession()
	}
	a.session, a.closeSession = session, closer
	a.flow.SetSession(session)

	fmt.Fprintf(a.out, "Connected %s on %s\n", session.Address.Hex(), a.net.Label)

	names := a.names.Refresh(ctx, session)
	if len(names) > 0 {
		fmt.Fprintf(a.out, "%d parent name(s) found, type 'names' to list them\n", len(names))
	}
	return nil
}

// ImportKey reads a hex private key and a passphrase and writes an
// encrypted key file to args[0].
func (a *App) ImportKey(_ context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: importkey <path>", common.ErrInvalidArgument)
	}
	path := args[0]

	if _, err := os.Stat(path); err == nil {
		ok, err := Confirm(a.reader, fmt.Sprintf("%s exists. Overwrite?", path), a.out)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	hexKey, err := getPassword(a.out, "Private key (hex)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(hexKey)

	key, err := cryptox.ParseHexKey(string(hexKey))
	if err != nil {
		return err
	}

	pass, err := getPassword(a.out, "New passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	repeat, err := getPassword(a.out, "Repeat passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeat)

	if len(pass) == 0 {
		return fmt.Errorf("%w: passphrase must not be empty", common.ErrInvalidArgument)
	}
	if !bytes.Equal(pass, repeat) {
		return fmt.Errorf("%w: passphrases do not match", common.ErrInvalidArgument)
	}

	if err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	if err := cryptox.WriteKeyFile(path, key, pass); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Key for %s written to %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex(), path)
	return nil
}

func (a *App) Status(_ context.Context) error {
	snap := a.flow.Snapshot()

	fmt.Fprintf(a.out, "Network: %s (chain %d)\n", a.net.Label, a.net.ChainID)
	if a.isConnected() {
		fmt.Fprintf(a.out, "Wallet:  %s\n", a.session.Address.Hex())
	} else {
		fmt.Fprintln(a.out, "Wallet:  not connected")
	}
	fmt.Fprintf(a.out, "State:   %s\n", snap.State)

	if snap.Estimate != nil {
		fmt.Fprintf(a.out, "Estimate: %s\n", formatEstimate(snap.Estimate))
	}
	if snap.Progress != nil && (snap.State == models.FlowFunding || snap.State == models.FlowUploading) {
		fmt.Fprintf(a.out, "Progress: %s\n", formatProgress(*snap.Progress))
	}
	if snap.Upload != nil {
		fmt.Fprintln(a.out, formatUpload(snap.Upload))
	}
	if snap.Link != nil {
		fmt.Fprintln(a.out, formatLink(a.net, snap.Link))
	}
	if snap.Error != "" {
		fmt.Fprintf(a.out, "Error: %s (type 'clear' to dismiss)\n", snap.Error)
	}
	return nil
}

func (a *App) readBatch(cmd string, args []string) ([]models.File, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: usage: %s <paths...>", common.ErrInvalidArgument, cmd)
	}
	return filex.ReadBatch(args)
}

func (a *App) Estimate(ctx context.Context, args []string) error {
	files, err := a.readBatch("estimate", args)
	if err != nil {
		return err
	}
	if err := a.flow.EstimateFiles(ctx, files); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d file(s), %s\n", len(files), formatEstimate(a.flow.Snapshot().Estimate))
	return nil
}

// Upload funds and uploads the batch named by args after a confirmation.
func (a *App) Upload(ctx context.Context, args []string) error {
	files, err := a.readBatch("upload", args)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Fund and upload %d file(s), %s?", len(files), formatBytes(batch.TotalBytes(files))), a.out)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	a.lastProgress = nil
	if err := a.flow.StartUpload(ctx, files); err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatUpload(a.flow.Snapshot().Upload))
	return nil
}

func (a *App) Names(ctx context.Context) error {
	if !a.isConnected() {
		return common.ErrNoSession
	}
	names := a.names.Refresh(ctx, a.session)
	if len(names) == 0 {
		fmt.Fprintln(a.out, "No names found. Pass a name you own to 'link' directly.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintf(a.out, "  %s (%s)\n", n.Name, n.Source)
	}
	return nil
}

func (a *App) Next(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: next <name>", common.ErrInvalidArgument)
	}
	if !a.isConnected() {
		return common.ErrNoSession
	}
	s, err := a.names.NextVersion(ctx, a.session, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Next version: %s\n", s.Subdomain)
	return nil
}

// Resolve prints where a name's contenthash record points.
func (a *App) Resolve(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: resolve <name>", common.ErrInvalidArgument)
	}
	if !a.isConnected() {
		return common.ErrNoSession
	}
	id, err := a.names.Resolve(ctx, a.session, args[0])
	if err != nil {
		return err
	}
	if id == "" {
		fmt.Fprintf(a.out, "%s has no contenthash record\n", args[0])
		return nil
	}
	fmt.Fprintf(a.out, "%s -> %s\n", args[0], gatewayURL(id))
	return nil
}

func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if names := a.names.Names(); len(names) == 1 {
			args = []string{names[0].Name}
		} else {
			return fmt.Errorf("%w: usage: link <name>", common.ErrInvalidArgument)
		}
	}
	if err := a.flow.LinkEns(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatLink(a.net, a.flow.Snapshot().Link))
	return nil
}

func (a *App) Clear(_ context.Context) error {
	a.flow.ClearError()
	fmt.Fprintf(a.out, "State: %s\n", a.flow.Snapshot().State)
	return nil
}

// History lists the newest journaled uploads, up to args[0] of them.
func (a *App) History(ctx context.Context, args []string) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: usage: history [n]", common.ErrInvalidArgument)
		}
		limit = n
	}

	uploads, err := a.history.Uploads(ctx, limit)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		fmt.Fprintln(a.out, "No uploads yet.")
		return nil
	}

	var errs []error
	for _, u := range uploads {
		fmt.Fprintf(a.out, "%s  %s  %d file(s), %s  %s\n",
			u.CreatedAt.Local().Format("2006-01-02 15:04"), u.Network, len(u.Files), formatBytes(u.TotalBytes), gatewayURL(u.ManifestID))

		links, err := a.history.Links(ctx, u.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, l := range links {
			fmt.Fprintf(a.out, "    -> %s\n", l.Subdomain)
		}
	}
	return errors.Join(errs...)
}
