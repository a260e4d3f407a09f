package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/rohan/kriya/internal/agent"
)

// discordMaxMessage is Discord's hard message length limit.
const discordMaxMessage = 2000

// DiscordGateway mirrors the Telegram gateway over a Discord bot
// session: each message in a channel the bot can read becomes a goal.
type DiscordGateway struct {
	Session *discordgo.Session
	Runner  agent.Runner
	done    chan struct{}
}

func NewDiscordGateway(token string, runner agent.Runner) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	gw := &DiscordGateway{
		Session: session,
		Runner:  runner,
		done:    make(chan struct{}),
	}
	session.AddHandler(gw.onMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	return gw, nil
}

func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Printf("Authorized on account %s", dg.Session.State.User.Username)

	// discordgo runs its own event loop; block until Stop.
	<-dg.done
	return nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.Content == "" {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	report, err := dg.Runner.Run(context.Background(), m.ChannelID, m.Content)
	if err != nil {
		log.Printf("Error running goal: %v", err)
		report = fmt.Sprintf("I couldn't finish that goal: %v", err)
	}

	if err := dg.Send(m.ChannelID, report); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}

// Send delivers text to a channel, splitting it to respect Discord's
// message length limit.
func (dg *DiscordGateway) Send(chatID string, text string) error {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > discordMaxMessage {
			chunk = chunk[:discordMaxMessage]
		}
		if _, err := dg.Session.ChannelMessageSend(chatID, chunk); err != nil {
			return err
		}
		text = text[len(chunk):]
	}
	return nil
}

func (dg *DiscordGateway) Stop() error {
	err := dg.Session.Close()
	close(dg.done)
	return err
}
