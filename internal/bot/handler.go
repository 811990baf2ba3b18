package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/alnah/go-pics2pdf/internal/directory"
)

// User-facing replies. Wording matches the deployed bot.
const (
	msgAccessDenied = "Sorry, you do not have access to this bot. Please contact the admin to get access."

	msgOnlyOriginalAdd    = "Only the original admin can add new admins."
	msgOnlyOriginalRemove = "Only the original admin can remove admins."
	msgProvideAddID       = "Please provide a valid user ID of the new admin."
	msgProvideRemoveID    = "Please provide a valid user ID of the admin to remove."
)

// textHandler is the conversation state machine boundary.
type textHandler interface {
	HandleText(ctx context.Context, userID, text string)
}

// Handler authorizes inbound updates and routes them to admin commands
// or the conversation state machine.
type Handler struct {
	dir      directory.Directory
	gw       Gateway
	sessions textHandler
	logger   *slog.Logger
}

// NewHandler builds the inbound routing layer.
func NewHandler(dir directory.Directory, gw Gateway, sessions textHandler, logger *slog.Logger) *Handler {
	return &Handler{dir: dir, gw: gw, sessions: sessions, logger: logger}
}

// userQueueDepth buffers pending updates per user. A full queue makes
// the dispatch loop wait, which is acceptable backpressure: the user in
// question is already many messages behind.
const userQueueDepth = 16

// Run consumes updates until the channel closes. Each user gets a
// worker goroutine fed in arrival order, so one user's messages are
// handled strictly sequentially while different users' pipelines run
// simultaneously. Long-poll batches routinely carry several messages
// from one fast-typing user; handling them out of order would feed the
// rename answer into the dialog as a URL.
func (h *Handler) Run(ctx context.Context, updates <-chan Update) {
	var wg sync.WaitGroup
	queues := make(map[string]chan Update)

	for u := range updates {
		q, ok := queues[u.UserID]
		if !ok {
			q = make(chan Update, userQueueDepth)
			queues[u.UserID] = q
			wg.Add(1)
			go func() {
				defer wg.Done()
				for u := range q {
					h.HandleUpdate(ctx, u)
				}
			}()
		}
		q <- u
	}

	for _, q := range queues {
		close(q)
	}
	wg.Wait()
}

// HandleUpdate processes one inbound event: allow-list check first,
// then command dispatch or dialog routing. Unknown commands fall
// through to the dialog like any other text.
func (h *Handler) HandleUpdate(ctx context.Context, u Update) {
	if _, err := h.dir.FindByUserID(ctx, u.UserID); err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			h.logger.Error("admin lookup failed", "user", u.UserID, "error", err)
		}
		h.reply(ctx, u.UserID, msgAccessDenied)
		return
	}

	switch u.Command {
	case "addadmin":
		h.addAdmin(ctx, u)
	case "removeadmin":
		h.removeAdmin(ctx, u)
	default:
		h.sessions.HandleText(ctx, u.UserID, u.Text)
	}
}

// addAdmin inserts a new admin record. Only the original admin may do
// this, and the argument must be a numeric user ID.
func (h *Handler) addAdmin(ctx context.Context, u Update) {
	if !h.isOriginal(ctx, u.UserID) {
		h.reply(ctx, u.UserID, msgOnlyOriginalAdd)
		return
	}
	if !isNumericID(u.Arg) {
		h.reply(ctx, u.UserID, msgProvideAddID)
		return
	}
	if err := h.dir.Insert(ctx, directory.Record{UserID: u.Arg}); err != nil {
		h.logger.Error("failed to add admin", "id", u.Arg, "error", err)
		h.reply(ctx, u.UserID, msgProvideAddID)
		return
	}
	h.reply(ctx, u.UserID, fmt.Sprintf("User %s has been added as an admin.", u.Arg))
}

// removeAdmin deletes an admin record. The directory itself refuses to
// remove the original record.
func (h *Handler) removeAdmin(ctx context.Context, u Update) {
	if !h.isOriginal(ctx, u.UserID) {
		h.reply(ctx, u.UserID, msgOnlyOriginalRemove)
		return
	}
	if !isNumericID(u.Arg) {
		h.reply(ctx, u.UserID, msgProvideRemoveID)
		return
	}
	if err := h.dir.Delete(ctx, u.Arg); err != nil {
		h.logger.Error("failed to remove admin", "id", u.Arg, "error", err)
		h.reply(ctx, u.UserID, msgProvideRemoveID)
		return
	}
	h.reply(ctx, u.UserID, fmt.Sprintf("User %s has been removed as an admin.", u.Arg))
}

// isOriginal reports whether userID is the bootstrap admin.
func (h *Handler) isOriginal(ctx context.Context, userID string) bool {
	orig, err := h.dir.FindOriginal(ctx)
	if err != nil {
		h.logger.Error("original admin lookup failed", "error", err)
		return false
	}
	return orig.UserID == userID
}

// isNumericID reports whether s is a plausible numeric user identifier.
func isNumericID(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// reply sends a text response, logging delivery failures.
func (h *Handler) reply(ctx context.Context, userID, text string) {
	if err := h.gw.SendText(ctx, userID, text); err != nil {
		h.logger.Error("failed to send reply", "user", userID, "error", err)
	}
}
