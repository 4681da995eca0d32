package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"crm-engine/internal/domain/customer"
)

const roleDescription = "You are Martina, a friendly and conversational CRM assistant. " +
	"Your goal is to help users manage their CRM data effectively. " +
	"You can assist with analyzing records and providing insights. " +
	"When users ask you to make changes, inform them to use the record management endpoints."

// sampleSize is how many rows of the snapshot are shown to the model.
const sampleSize = 5

type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Assistant assembles a deterministic summary of a table snapshot plus the
// conversation so far, and forwards it to the completion provider. It has no
// write access to the store.
type Assistant struct {
	client Client
	logger *slog.Logger
}

func New(client Client, logger *slog.Logger) *Assistant {
	if client == nil {
		panic("assistant client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Assistant{
		client: client,
		logger: logger.With(slog.String("component", "Assistant")),
	}
}

func (a *Assistant) Chat(ctx context.Context, message string, rows []customer.Customer, history []Turn) (string, error) {
	conversation := make([]Message, 0, 2*len(history)+3)
	conversation = append(conversation, Message{Role: "system", Content: roleDescription})
	conversation = append(conversation, Message{Role: "system", Content: DataContext(rows)})
	for _, turn := range history {
		conversation = append(conversation, Message{Role: "user", Content: turn.User})
		conversation = append(conversation, Message{Role: "assistant", Content: turn.Assistant})
	}
	conversation = append(conversation, Message{Role: "user", Content: message})

	a.logger.InfoContext(ctx, "Forwarding chat request",
		slog.Int("historyTurns", len(history)),
		slog.Int("tableRows", len(rows)),
	)

	reply, err := a.client.Complete(ctx, conversation)
	if err != nil {
		a.logger.ErrorContext(ctx, "Completion failed", slog.Any("error", err))
		return "", err
	}
	return reply, nil
}

// DataContext renders the snapshot summary sent with every request: total
// record count, the column names, and a small aligned sample of rows. The
// output is a pure function of the snapshot.
func DataContext(rows []customer.Customer) string {
	var b strings.Builder
	b.WriteString("Current CRM Data Overview:\n")
	fmt.Fprintf(&b, "- Total Customers: %d\n", len(rows))
	fmt.Fprintf(&b, "- Columns: %s\n\n", strings.Join(customer.Columns(), ", "))
	b.WriteString("Sample Data:\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(customer.Columns(), "\t"))
	n := len(rows)
	if n > sampleSize {
		n = sampleSize
	}
	for _, row := range rows[:n] {
		fmt.Fprintln(w, strings.Join(row.Fields(), "\t"))
	}
	w.Flush()

	return strings.TrimRight(b.String(), "\n")
}
