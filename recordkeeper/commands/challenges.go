package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

const challengesPerPage = 12

var Challenges = discord.SlashCommandCreate{
	Name:        "challenges",
	Description: "List the challenges still waiting to be conquered",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "all",
			Description: "Include challenges that have already been conquered",
		},
	},
}

func ChallengesHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		includeAll, _ := e.SlashCommandInteractionData().OptBool("all")

		var challenges []*models.Challenge
		if includeAll {
			challenges, err = b.ChallengeEventRepository.ListActive(ctx, event.ID)
		} else {
			challenges, err = b.ChallengeEventRepository.ListIncompleteActive(ctx, event.ID)
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to list challenges.")
		}
		if len(challenges) == 0 {
			if includeAll {
				return utils.EH.CreateInfoEmbed(e, "No challenges are active yet.")
			}
			return utils.EH.CreateSuccessEmbed(e, "Every active challenge has been conquered!")
		}

		title := fmt.Sprintf("Open challenges in %s", event.Name)
		if includeAll {
			title = fmt.Sprintf("Challenges in %s", event.Name)
		}

		lines := groupByScenario(challenges)
		totalPages := int(math.Ceil(float64(len(lines)) / float64(challengesPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * challengesPerPage
				end := min(start+challengesPerPage, len(lines))

				embed.SetTitle(title).
					SetDescription(strings.Join(lines[start:end], "\n")).
					SetColor(utils.InfoColor).
					SetFooter(fmt.Sprintf("Page %d of %d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

// groupByScenario renders challenges under scenario headers, preserving the
// repository's scenario ordering. Challenges without a scenario come last.
func groupByScenario(challenges []*models.Challenge) []string {
	var lines []string
	var orphans []string
	lastHeader := ""

	for _, ch := range challenges {
		if ch.Scenario == nil {
			orphans = append(orphans, challengeLine(ch))
			continue
		}
		header := fmt.Sprintf("__%s %s__", ch.Scenario.Code, ch.Scenario.Title)
		if header != lastHeader {
			lines = append(lines, header)
			lastHeader = header
		}
		lines = append(lines, challengeLine(ch))
	}

	if len(orphans) > 0 {
		lines = append(lines, "__General__")
		lines = append(lines, orphans...)
	}
	return lines
}
