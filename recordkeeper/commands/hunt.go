package commands

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

const defaultHuntCount = 3

var Hunt = discord.SlashCommandCreate{
	Name:        "hunt",
	Description: "Draw hunt challenges that nobody has finished yet",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "mode",
			Description: "Which difficulty to draw from",
			Required:    false,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "standard", Value: models.AttrStandard},
				{Name: "expert", Value: models.AttrExpert},
				{Name: "all", Value: ""},
			},
		},
		discord.ApplicationCommandOptionInt{
			Name:        "count",
			Description: "How many challenges to draw",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(10),
		},
	},
}

var Gauntlet = discord.SlashCommandCreate{
	Name:        "gauntlet",
	Description: "Draw one gauntlet challenge, if you dare",
}

func HuntHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data := e.SlashCommandInteractionData()
		count := defaultHuntCount
		if n, ok := data.OptInt("count"); ok {
			count = n
		}

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		attrs := []string{models.AttrHunt}
		if mode, ok := data.OptString("mode"); ok && mode != "" {
			attrs = append(attrs, mode)
		}

		challenges, err := b.ChallengeEventRepository.SampleIncomplete(ctx, event.ID, count, attrs...)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to draw hunt challenges.")
		}
		if len(challenges) == 0 {
			return utils.EH.CreateSuccessEmbed(e, "The hunt is over. Every hunt challenge has been finished!")
		}

		lines := make([]string, 0, len(challenges))
		for _, ch := range challenges {
			lines = append(lines, challengeLine(ch))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "The hunt is on",
				Description: utils.FormatCollection(lines),
				Color:       utils.InfoColor,
			}},
		})
	}
}

// GauntletHandler draws from the full challenge catalog rather than the
// event: gauntlet challenges are untracked dares, not event goals.
func GauntletHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		challenges, err := b.ChallengeRepository.SampleByAttribute(ctx, models.AttrGauntlet, 1)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to draw a gauntlet challenge.")
		}
		if len(challenges) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No gauntlet challenges exist yet.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Throw down the gauntlet",
				Description: challengeLine(challenges[0]),
				Color:       utils.WarningColor,
			}},
		})
	}
}
