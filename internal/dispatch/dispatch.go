package dispatch

import (
	"context"
	"errors"
	"log"

	"chatbridge/internal/flow"
	"chatbridge/internal/models"
	"chatbridge/internal/store"

	"gorm.io/gorm"
)

// Sender is the outbound send capability the coordinator invokes.
// It reports the provider message id on success.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) (string, error)
}

// InboundMessage is one normalized inbound webhook event.
type InboundMessage struct {
	WabaID          string
	FirmPhoneNumber string
	From            string
	ProfileName     string
	Body            string
	MessageID       string
}

// Dispatcher orchestrates one inbound event end-to-end: audit logging,
// firm resolution, conversation state, flow evaluation, and the reply.
type Dispatcher struct {
	firms  *store.FirmStore
	users  *store.ChatUserStore
	logs   *store.MessageLogStore
	sender Sender
}

func NewDispatcher(firms *store.FirmStore, users *store.ChatUserStore, logs *store.MessageLogStore, sender Sender) *Dispatcher {
	return &Dispatcher{
		firms:  firms,
		users:  users,
		logs:   logs,
		sender: sender,
	}
}

// Dispatch processes one inbound message. All failures are absorbed and
// logged so the webhook endpoint can always acknowledge receipt.
func (d *Dispatcher) Dispatch(ctx context.Context, msg InboundMessage) {
	// Inbound logging is unconditional, regardless of downstream outcome.
	if err := d.logs.Append(ctx, &models.MessageLog{
		Direction:       models.DirectionIn,
		PhoneNumber:     msg.From,
		Message:         msg.Body,
		Status:          "received",
		WabaID:          msg.WabaID,
		FirmPhoneNumber: msg.FirmPhoneNumber,
		UserName:        msg.ProfileName,
		MessageID:       msg.MessageID,
	}); err != nil {
		log.Printf("Error logging inbound message from %s: %v", msg.From, err)
	}

	firm, err := d.firms.ByPhone(ctx, msg.FirmPhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A webhook for an unrecognized number is dropped, not an error.
			log.Printf("No active firm for receiving number %s, dropping message", msg.FirmPhoneNumber)
		} else {
			log.Printf("Error resolving firm for %s: %v", msg.FirmPhoneNumber, err)
		}
		return
	}

	user, err := d.users.GetOrCreate(ctx, firm, msg.From, msg.ProfileName)
	if err != nil {
		log.Printf("Error resolving chat user %s for firm %s: %v", msg.From, firm.Name, err)
		return
	}

	nextStep, reply := flow.Evaluate(d.parseFirmFlow(firm), user.CurrentStep, msg.Body)
	if nextStep == "" {
		// Terminal step or evaluation dead end: no reply by policy.
		if reply != "" {
			log.Printf("No transition for %s at step %q: %s", msg.From, user.CurrentStep, reply)
		}
		return
	}

	if err := d.users.Update(ctx, user, nextStep, msg.Body); err != nil {
		log.Printf("Error updating chat user %s to step %q: %v", msg.From, nextStep, err)
		return
	}

	if reply == "" {
		// Transition target has no message to send (lenient policy).
		return
	}

	status := "sent"
	providerID, err := d.sender.SendMessage(ctx, msg.From, reply)
	if err != nil {
		log.Printf("Error sending reply to %s: %v", msg.From, err)
		status = "failed"
	}

	if err := d.logs.Append(ctx, &models.MessageLog{
		Direction:       models.DirectionOut,
		PhoneNumber:     msg.From,
		Message:         reply,
		Status:          status,
		WabaID:          msg.WabaID,
		FirmPhoneNumber: msg.FirmPhoneNumber,
		UserName:        msg.ProfileName,
		MessageID:       providerID,
	}); err != nil {
		log.Printf("Error logging outbound message to %s: %v", msg.From, err)
	}
}

// parseFirmFlow is lenient at dispatch time: an empty or malformed flow
// document evaluates as "no flow configured". Structural validation is the
// admin surface's job at save time.
func (d *Dispatcher) parseFirmFlow(firm *models.Firm) *flow.Flow {
	if firm.Flow == "" {
		return nil
	}
	f, err := flow.ParseFlow([]byte(firm.Flow))
	if err != nil {
		log.Printf("Malformed flow for firm %s: %v", firm.Name, err)
		return nil
	}
	return f
}
