package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/services"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Progress = discord.SlashCommandCreate{
	Name:        "progress",
	Description: "How far along the event's scenarios are",
}

var CProgress = discord.SlashCommandCreate{
	Name:        "cprogress",
	Description: "How far along the event's challenges are",
}

var MyProgress = discord.SlashCommandCreate{
	Name:        "myprogress",
	Description: "Your personal challenge tally for the event",
}

var HuntProgress = discord.SlashCommandCreate{
	Name:        "huntprogress",
	Description: "How the hunt is going",
}

func ProgressHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return progressCommand(b, "Scenarios", func(ctx context.Context, b *recordkeeper.Bot, eventID, _ int64) (services.ProgressReport, error) {
		return b.ProgressService.ScenarioProgress(ctx, eventID)
	})
}

func CProgressHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return progressCommand(b, "Challenges", func(ctx context.Context, b *recordkeeper.Bot, eventID, _ int64) (services.ProgressReport, error) {
		return b.ProgressService.GroupChallengeProgress(ctx, eventID)
	})
}

func MyProgressHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return progressCommand(b, "Your challenges", func(ctx context.Context, b *recordkeeper.Bot, eventID, userID int64) (services.ProgressReport, error) {
		return b.ProgressService.ActorChallengeProgress(ctx, eventID, userID)
	})
}

func HuntProgressHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return progressCommand(b, "The hunt", func(ctx context.Context, b *recordkeeper.Bot, eventID, _ int64) (services.ProgressReport, error) {
		return b.ProgressService.HuntProgress(ctx, eventID)
	})
}

// progressCommand builds a handler around one aggregator call. The actor is
// resolved up front so per-actor reports always have a user row to count
// against.
func progressCommand(b *recordkeeper.Bot, label string, report func(context.Context, *recordkeeper.Bot, int64, int64) (services.ProgressReport, error)) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		user, err := b.UserRepository.GetOrCreate(ctx, int64(e.User().ID), e.User().Username)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to record who you are.")
		}

		r, err := report(ctx, b, event.ID, user.ID)
		if errors.Is(err, services.ErrNoProgressData) {
			return utils.EH.CreateInfoEmbed(e, "There is nothing to measure yet.")
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to compute progress.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: fmt.Sprintf("%s in %s", label, event.Name),
				Description: fmt.Sprintf("%s complete (%d of %d)",
					utils.FormatPercent(r.Percent), r.Completed, r.Total),
				Color: utils.InfoColor,
			}},
		})
	}
}
