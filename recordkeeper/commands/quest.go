package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

const defaultQuestCount = 3

var Quest = discord.SlashCommandCreate{
	Name:        "quest",
	Description: "Draw random scenarios that are open for the taking",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "count",
			Description: "How many scenarios to draw",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(10),
		},
	},
}

func QuestHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		count := defaultQuestCount
		if n, ok := e.SlashCommandInteractionData().OptInt("count"); ok {
			count = n
		}

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		entries, err := b.RosterRepository.ListAvailable(ctx, event.ID, count)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to draw scenarios.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nothing is open right now. Everything is either reserved or already complete.")
		}

		lines := make([]string, 0, len(entries))
		for _, entry := range entries {
			lines = append(lines, scenarioLine(entry))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Open scenarios in %s", event.Name),
				Description: utils.FormatCollection(lines),
				Color:       utils.InfoColor,
			}},
		})
	}
}
