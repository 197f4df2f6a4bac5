package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/playbuilder/internal/service"
)

const helpText = "Available commands:\n" +
	"/teams <offense> <defense> - Set team codes or names\n" +
	"/parse <description> - Parse a free-text play\n" +
	"/spec - Show the parsed play spec\n" +
	"/sim [n] [seed] - Simulate the play n times\n" +
	"/drive [seed] - Simulate a full drive\n" +
	"/health - Check the play service"

type Handler struct {
	playbookService *service.PlaybookService
}

func NewHandler(playbookService *service.PlaybookService) *Handler {
	return &Handler{playbookService: playbookService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()
	key := strconv.FormatInt(update.Message.Chat.ID, 10)
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to PlayBuilder! Describe a play with /parse, then run it with /sim or /drive. Use /help to see all commands."
	case "help":
		msg.Text = helpText
	case "teams":
		h.handleTeams(&msg, key, args)
	case "parse":
		h.handleParse(ctx, &msg, key, args)
	case "spec":
		h.handleSpec(&msg, key)
	case "sim":
		h.handleSimulate(ctx, &msg, key, args)
	case "drive":
		h.handleDrive(ctx, &msg, key, args)
	case "health":
		msg.Text = h.playbookService.Health(ctx)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleTeams(msg *tgbotapi.MessageConfig, key, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		msg.Text = "Please provide two teams. Usage: /teams <offense> <defense>"
		return
	}
	msg.Text = h.playbookService.SetTeams(key, fields[0], fields[1])
}

func (h *Handler) handleParse(ctx context.Context, msg *tgbotapi.MessageConfig, key, args string) {
	if strings.TrimSpace(args) == "" {
		msg.Text = "Please describe the play. Usage: /parse <description>"
		return
	}
	result, err := h.playbookService.Parse(ctx, key, args)
	if err != nil {
		msg.Text = service.UserMessage("parsing play", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleSpec(msg *tgbotapi.MessageConfig, key string) {
	result, err := h.playbookService.Spec(key)
	if err != nil {
		msg.Text = service.UserMessage("showing spec", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleSimulate(ctx context.Context, msg *tgbotapi.MessageConfig, key, args string) {
	fields := strings.Fields(args)
	if len(fields) > 2 {
		msg.Text = "Usage: /sim [n] [seed]"
		return
	}

	var n *int
	if len(fields) > 0 {
		v, err := strconv.Atoi(fields[0])
		if err != nil {
			msg.Text = fmt.Sprintf("Invalid sample count %q. Usage: /sim [n] [seed]", fields[0])
			return
		}
		n = &v
	}

	var seed *int64
	if len(fields) > 1 {
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			msg.Text = fmt.Sprintf("Invalid seed %q. Usage: /sim [n] [seed]", fields[1])
			return
		}
		seed = &v
	}

	result, err := h.playbookService.Simulate(ctx, key, n, seed)
	if err != nil {
		msg.Text = service.UserMessage("simulating play", err)
	} else {
		msg.Text = result
	}
}

func (h *Handler) handleDrive(ctx context.Context, msg *tgbotapi.MessageConfig, key, args string) {
	fields := strings.Fields(args)
	if len(fields) > 1 {
		msg.Text = "Usage: /drive [seed]"
		return
	}

	var seed *int64
	if len(fields) == 1 {
		v, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			msg.Text = fmt.Sprintf("Invalid seed %q. Usage: /drive [seed]", fields[0])
			return
		}
		seed = &v
	}

	result, err := h.playbookService.Drive(ctx, key, seed)
	if err != nil {
		msg.Text = service.UserMessage("simulating drive", err)
	} else {
		msg.Text = result
	}
}
