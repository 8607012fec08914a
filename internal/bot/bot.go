// Package bot hosts the Discord command surface of the shop.
//
// Commands are resolved through a static table built once at startup: every
// command declares its name, aliases, usage line and whether it is admin
// only. Handler failures never crash the process; they are caught at the
// dispatch boundary and turned into an in-channel reply.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"shopbot/internal/config"
	"shopbot/internal/gateway"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

type Handler func(ctx context.Context, m *discordgo.MessageCreate, args []string) error

type Command struct {
	Name      string
	Aliases   []string
	Usage     string
	AdminOnly bool
	Run       Handler
}

type Bot struct {
	session *discordgo.Session
	cfg     config.BotConfig
	store   *store.Store
	service *shop.Service
	rates   *gateway.RateClient

	ctx      context.Context
	commands map[string]*Command
	admins   map[string]bool
}

func New(ctx context.Context, cfg config.BotConfig, st *store.Store, service *shop.Service, rates *gateway.RateClient) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	b := &Bot{
		session:  session,
		cfg:      cfg,
		store:    st,
		service:  service,
		rates:    rates,
		ctx:      ctx,
		commands: make(map[string]*Command),
		admins:   make(map[string]bool),
	}
	for _, id := range cfg.AdminIDs {
		b.admins[id] = true
	}

	for _, cmd := range b.commandTable() {
		b.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			b.commands[alias] = cmd
		}
	}

	session.AddHandler(b.onMessageCreate)
	return b, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	log.Println("bot connected")
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return
	}

	fields := strings.Fields(m.Content[len(b.cfg.Prefix):])
	if len(fields) == 0 {
		return
	}

	cmd, ok := b.commands[strings.ToLower(fields[0])]
	if !ok {
		return
	}
	if cmd.AdminOnly && !b.admins[m.Author.ID] {
		b.reply(m, "🚫 You don't have permission to use this command.")
		return
	}

	// Each command runs in its own goroutine: a buy can poll the gateway
	// for minutes and must not block other commands.
	go func() {
		if err := cmd.Run(b.ctx, m, fields[1:]); err != nil {
			log.Printf("bot: command %s: %v", cmd.Name, err)
			b.reply(m, "❌ Something went wrong. Please try again later.")
		}
	}()
}

func (b *Bot) reply(m *discordgo.MessageCreate, content string) {
	if _, err := b.session.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Printf("bot: reply in %s: %v", m.ChannelID, err)
	}
}

func (b *Bot) send(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("bot: send in %s: %v", channelID, err)
	}
}

func (b *Bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("bot: send embed in %s: %v", channelID, err)
	}
}

// dm opens (or reuses) the user's DM channel and sends the embed there.
func (b *Bot) dm(userID string, embed *discordgo.MessageEmbed) {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		log.Printf("bot: open DM with %s: %v", userID, err)
		return
	}
	b.sendEmbed(channel.ID, embed)
}
