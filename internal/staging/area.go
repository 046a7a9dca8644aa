package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"decant/internal/fileutil"
	"decant/internal/logging"
)

// ErrLocked is returned when another process holds the staging lock.
var ErrLocked = errors.New("staging area is locked by another decant run")

// Area owns the inbound and outbound scratch roots of one service. Inbound
// holds archives waiting to be unpacked; outbound holds each item's
// fully unpacked tree before relocation.
type Area struct {
	Inbound  string
	Outbound string

	lockPath string
	lock     *flock.Flock
	logger   *slog.Logger
}

// New describes a staging area guarded by a lock file at lockPath.
func New(inbound, outbound, lockPath string, logger *slog.Logger) *Area {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Area{
		Inbound:  inbound,
		Outbound: outbound,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		logger:   logger,
	}
}

// Acquire takes the exclusive staging lock without blocking.
func (a *Area) Acquire() error {
	if err := fileutil.EnsureParent(a.lockPath); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, a.lockPath)
	}
	return nil
}

// Release drops the staging lock.
func (a *Area) Release() {
	if err := a.lock.Unlock(); err != nil {
		logging.WarnWithContext(a.logger, "failed to release staging lock", "staging_unlock_failed",
			logging.String("lock", a.lockPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "lock is released when the process exits"),
		)
	}
}

// Locked reports whether this Area currently holds the lock.
func (a *Area) Locked() bool {
	return a.lock.Locked()
}

// Reset wipes and recreates both roots. Leftovers from an interrupted run are
// logged before removal. The lock must be held.
func (a *Area) Reset() error {
	if !a.lock.Locked() {
		return errors.New("staging reset requires the staging lock")
	}
	for _, root := range []string{a.Inbound, a.Outbound} {
		leftovers, err := ListDirectories(root)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", root, err)
		}
		for _, dir := range leftovers {
			a.logger.Info("discarding leftover staging directory",
				logging.String("path", dir.Path),
				logging.String("size", humanize.Bytes(uint64(dir.Size))),
				logging.String(logging.FieldEventType, "staging_leftover"),
			)
		}
		if err := fileutil.ResetDir(root); err != nil {
			return err
		}
	}
	return nil
}

// ItemInbound returns the inbound directory for one item folder.
func (a *Area) ItemInbound(folder string) string {
	return filepath.Join(a.Inbound, folder)
}

// ItemOutbound returns the outbound directory for one item folder.
func (a *Area) ItemOutbound(folder string) string {
	return filepath.Join(a.Outbound, folder)
}
