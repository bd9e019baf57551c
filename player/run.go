package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lectern/book"
	"lectern/library"
	"lectern/state"
)

func openLibrary(env *state.LocalEnv, log *zap.Logger) (*library.Library, error) {
	lib, err := library.Scan(&env.Cfg.Library, &env.Cfg.Content, log)
	if err != nil {
		return nil, err
	}
	for _, e := range multierr.Errors(lib.Skipped()) {
		log.Debug("Library problem", zap.Error(e))
	}
	return lib, nil
}

func closeLibrary(lib *library.Library, err *error) {
	if er := lib.Close(); er != nil {
		*err = multierr.Append(*err, fmt.Errorf("unable to close library: %w", er))
	}
}

func bookTitle(cmd *cli.Command, log *zap.Logger) (string, error) {
	title := cmd.Args().Get(0)
	if len(title) == 0 {
		return "", errors.New("no book title has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	return title, nil
}

// location is where entry comes from as shown to the user.
func location(e *library.Entry) string {
	if e.Bundle != "" {
		return e.Bundle + ":" + e.Source.Name
	}
	return e.Source.Name
}

// List prints books available in the library.
func List(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("list")

	lib, err := openLibrary(env, log)
	if err != nil {
		return err
	}
	defer closeLibrary(lib, &err)

	return writeList(os.Stdout, lib)
}

func writeList(w io.Writer, lib *library.Library) error {
	for _, e := range lib.Entries() {
		if _, err := fmt.Fprintf(w, "%s\t%d pages\t%s\n", e.Title(), len(e.Book.Keys()), location(e)); err != nil {
			return fmt.Errorf("unable to write list: %w", err)
		}
	}
	return nil
}

// Inspect fully loads a book and prints its structure.
func Inspect(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	title, err := bookTitle(cmd, log)
	if err != nil {
		return err
	}
	lib, err := openLibrary(env, log)
	if err != nil {
		return err
	}
	defer closeLibrary(lib, &err)

	entry, err := lib.Find(title)
	if err != nil {
		return err
	}
	b := entry.Load(book.Hard, &env.Cfg.Content, log)
	if !b.Valid() {
		return b.Err()
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("inspect/"+filepath.Base(entry.Source.Name)+".txt", []byte(b.String()))
	}
	_, err = io.WriteString(os.Stdout, b.String())
	return err
}

// Run plays a book headlessly.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("play")

	title, err := bookTitle(cmd, log)
	if err != nil {
		return err
	}
	opts := Options{
		Page:      cmd.Int("page"),
		Frames:    cmd.Int("frames"),
		FPS:       cmd.Int("fps"),
		Every:     cmd.Int("every"),
		Snapshots: cmd.String("snapshots"),
	}
	if opts.Snapshots != "" {
		if opts.Snapshots, err = filepath.Abs(opts.Snapshots); err != nil {
			return err
		}
	}

	lib, err := openLibrary(env, log)
	if err != nil {
		return err
	}
	defer closeLibrary(lib, &err)

	entry, err := lib.Find(title)
	if err != nil {
		return err
	}

	log.Info("Playback starting", zap.String("book", entry.Title()), zap.Int("page", opts.Page), zap.Int("fps", opts.FPS))
	start := time.Now()
	res, err := Play(ctx, env.Cfg, lib, entry, env.Chrome, env.Shadow, opts, log)
	if err != nil {
		return err
	}
	if env.Rpt != nil && opts.Snapshots != "" {
		env.Rpt.Store("snapshots", opts.Snapshots)
	}
	log.Info("Playback completed",
		zap.Int("frames", res.Frames),
		zap.Ints("pages", res.Pages),
		zap.Bool("closed", res.Closed),
		zap.Int("snapshots", len(res.Snapshots)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
