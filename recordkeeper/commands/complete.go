package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Complete = discord.SlashCommandCreate{
	Name:        "complete",
	Description: "Record a scenario as completed for the event",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "code",
			Description: "Scenario code, e.g. 0703",
			Required:    true,
		},
	},
}

func CompleteHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		code := e.SlashCommandInteractionData().String("code")

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		scenario, err := b.ScenarioRepository.GetByCode(ctx, code)
		if errors.Is(err, repositories.ErrScenarioNotFound) {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("No scenario with code `%s`.", code))
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the scenario.")
		}

		_, err = b.RosterRepository.Complete(ctx, event.ID, scenario.ID)
		switch {
		case errors.Is(err, repositories.ErrNotOnRoster):
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("**%s** is not part of %s.", scenario.Title, event.Name))
		case errors.Is(err, repositories.ErrAlreadyComplete):
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("**%s** was already recorded as complete.", scenario.Title))
		case err != nil:
			return utils.EH.CreateErrorEmbed(e, "Failed to record the completion.")
		}

		report, err := b.ProgressService.ScenarioProgress(ctx, event.ID)
		if err != nil {
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** is done!", scenario.Title))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"**%s** is done! %s is now %s complete (%d of %d).",
			scenario.Title, event.Name, utils.FormatPercent(report.Percent), report.Completed, report.Total))
	}
}
