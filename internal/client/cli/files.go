package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/ledgerdrive/internal/filex"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dustin/go-humanize"
)

// readUpload is a test seam for filex.ReadUpload.
var readUpload = filex.ReadUpload

// maxUploadSize is the ledger's file size limit, or 0 when the config
// account cannot be read yet.
func (a *App) maxUploadSize(ctx context.Context) int64 {
	c, err := a.files.Config(ctx)
	if err != nil {
		return 0
	}
	return int64(c.MaxFileSize)
}

// Upload publishes the file at args[0] under args[1] or its base name.
func (a *App) Upload(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	path, err := a.argOrPrompt(args, 0, "Enter file path")
	if err != nil {
		return err
	}

	name, data, err := readUpload(path, a.maxUploadSize(ctx))
	if err != nil {
		return err
	}
	if len(args) > 1 {
		name = args[1]
	}

	fmt.Fprintf(a.out, "Uploading %s (%s)\n", name, humanize.IBytes(uint64(len(data))))

	p := newProgressPrinter(a.out, a.tty)
	res, err := a.files.Upload(ctx, a.owner, name, data, p.Render)
	p.Done()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s, storage id %s\n", res.FileName, res.StorageID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	listing, err := a.files.List(ctx, a.owner)
	if err != nil {
		return err
	}
	if listing.Degraded {
		fmt.Fprintln(a.out, "Ledger unavailable, showing local uploads only")
	}
	if len(listing.Files) == 0 {
		fmt.Fprintln(a.out, "No files uploaded yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tSTATUS\tVISIBILITY\tCREATED")
	for _, f := range listing.Files {
		status := string(f.Status)
		if f.Local {
			status += " (local)"
		}
		visibility := "private"
		if f.IsPublic {
			visibility = "public"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.FileName, humanize.IBytes(f.FileSize), status, visibility, humanize.Time(f.CreatedAt))
	}
	return tw.Flush()
}

func (a *App) Pending(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	rows, err := a.files.Pending(ctx, a.owner)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No uploads in flight")
		return nil
	}
	for _, u := range rows {
		fmt.Fprintf(a.out, "%s  %s  %s\n", u.FileName, humanize.IBytes(u.FileSize), u.Status)
	}
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	p, err := a.files.Profile(ctx, a.owner)
	if errors.Is(err, ledger.ErrNotFound) {
		fmt.Fprintln(a.out, "No profile yet, it is created with the first upload")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Owner:       %s\n", p.Owner)
	fmt.Fprintf(a.out, "Files:       %s\n", humanize.Comma(int64(p.FilesOwned)))
	fmt.Fprintf(a.out, "Storage:     %s\n", humanize.IBytes(p.StorageUsed))
	fmt.Fprintf(a.out, "Paid until:  %s\n", p.StoragePaidUntil.Format("2006-01-02"))
	fmt.Fprintf(a.out, "Reputation:  %d\n", p.ReputationScore)
	return nil
}

func (a *App) URL(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	name, err := a.argOrPrompt(args, 0, "Enter file name")
	if err != nil {
		return err
	}
	u, err := a.files.FileURL(ctx, a.owner, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u)
	return nil
}

// Download saves the content of file args[0] to args[1] or the file name.
func (a *App) Download(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	name, err := a.argOrPrompt(args, 0, "Enter file name")
	if err != nil {
		return err
	}
	path := name
	if len(args) > 1 {
		path = args[1]
	}

	data, err := a.files.Download(ctx, a.owner, name)
	if err != nil {
		return err
	}
	if err := filex.WriteDownload(path, data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Downloaded %s to %s (%s)\n", name, path, humanize.IBytes(uint64(len(data))))
	return nil
}

func (a *App) SetVisibility(ctx context.Context, args []string, public bool) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	name, err := a.argOrPrompt(args, 0, "Enter file name")
	if err != nil {
		return err
	}
	if err := a.files.SetVisibility(ctx, a.owner, name, public); err != nil {
		return err
	}

	if public {
		fmt.Fprintf(a.out, "%s is now public\n", name)
	} else {
		fmt.Fprintf(a.out, "%s is now private\n", name)
	}
	return nil
}

// Clear evicts the local upload rows.
func (a *App) Clear(ctx context.Context) error {
	if err := a.files.ClearLocal(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local uploads cleared")
	return nil
}
