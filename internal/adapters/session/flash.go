package session

import (
	"context"

	"github.com/alexedwards/scs/v2"

	"hotel_editor/internal/domain"
)

// PutFlash queues a notice for the next rendered page.
func PutFlash(ctx context.Context, sm *scs.SessionManager, n domain.Notice) {
	sm.Put(ctx, keyFlash, n.Text)
	sm.Put(ctx, keyFlashTitle, n.Title)
	sm.Put(ctx, keyFlashType, string(n.Kind))
}

// PopFlash takes the queued notice, if any.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (domain.Notice, bool) {
	text := sm.PopString(ctx, keyFlash)
	title := sm.PopString(ctx, keyFlashTitle)
	kind := sm.PopString(ctx, keyFlashType)
	if text == "" {
		return domain.Notice{}, false
	}
	if kind == "" {
		kind = "info"
	}
	return domain.Notice{Kind: domain.NoticeKind(kind), Title: title, Text: text}, true
}
