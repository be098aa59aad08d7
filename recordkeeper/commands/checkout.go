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

var Checkout = discord.SlashCommandCreate{
	Name:        "checkout",
	Description: "Reserve a scenario so others know you are on it",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "code",
			Description: "Scenario code, e.g. 0703",
			Required:    true,
		},
	},
}

func CheckoutHandler(b *recordkeeper.Bot) handler.CommandHandler {
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

		user, err := b.UserRepository.GetOrCreate(ctx, int64(e.User().ID), e.User().Username)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to record who you are.")
		}

		entry, err := b.RosterRepository.Checkout(ctx, event.ID, scenario.ID, user.ID)
		switch {
		case errors.Is(err, repositories.ErrNotOnRoster):
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("**%s** is not part of %s.", scenario.Title, event.Name))
		case errors.Is(err, repositories.ErrAlreadyComplete):
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("**%s** has already been completed.", scenario.Title))
		case errors.Is(err, repositories.ErrAlreadyReserved):
			holder := "someone"
			if entry.CheckoutUserID != nil {
				if u, uerr := b.UserRepository.GetByID(ctx, *entry.CheckoutUserID); uerr == nil {
					holder = u.Name
				}
			}
			remaining := utils.FormatRemaining(entry.LeaseExpiresAt(b.RosterRepository.TTL()), time.Now())
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf(
				"**%s** is reserved by %s for another %s.", scenario.Title, holder, remaining))
		case err != nil:
			return utils.EH.CreateErrorEmbed(e, "Failed to reserve the scenario.")
		}

		expires := entry.LeaseExpiresAt(b.RosterRepository.TTL())
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"**%s** is yours until <t:%d:t>. Good hunting!", scenario.Title, expires.Unix()))
	}
}
