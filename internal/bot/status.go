package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/observability"
)

// handleStatus probes every collaborator concurrently and renders one
// consolidated report. A slow service delays the reply but cannot block
// the others' probes.
func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID, "🔍 Checking services status...")

	probes := []func(context.Context) domain.ServiceStatus{
		b.qb.Health,
		b.idx.Health,
		b.media.Health,
	}

	statuses := make([]domain.ServiceStatus, len(probes))
	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, probe func(context.Context) domain.ServiceStatus) {
			defer wg.Done()
			start := time.Now()
			statuses[i] = probe(ctx)
			observability.ObserveCollaborator(statuses[i].Name, "health", time.Since(start), probeError(statuses[i]))
		}(i, probe)
	}
	wg.Wait()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏠 %s Services Status:\n\n", b.cfg.ServerName))
	for _, st := range statuses {
		mark := "🔴"
		if st.Online {
			mark = "🟢"
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s (%dms)\n", mark, st.Name, st.Message, st.Latency.Milliseconds()))
	}

	b.out.send(ctx, msg.Chat.ID, sb.String())
}

// probeError converts an offline health report into an error value so
// the collaborator metric records the probe as a failure.
func probeError(st domain.ServiceStatus) error {
	if st.Online {
		return nil
	}
	return errors.New(st.Message)
}
