package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/utils"
)

var Conquer = discord.SlashCommandCreate{
	Name:        "conquer",
	Description: "Record a challenge as conquered by you and your fellowship",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "code",
			Description: "Challenge code, e.g. PTM03",
			Required:    true,
		},
		discord.ApplicationCommandOptionUser{
			Name:        "partner1",
			Description: "Someone who conquered it with you",
			Required:    false,
		},
		discord.ApplicationCommandOptionUser{
			Name:        "partner2",
			Description: "Someone who conquered it with you",
			Required:    false,
		},
		discord.ApplicationCommandOptionUser{
			Name:        "partner3",
			Description: "Someone who conquered it with you",
			Required:    false,
		},
	},
}

func ConquerHandler(b *recordkeeper.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data := e.SlashCommandInteractionData()
		code := data.String("code")

		event, err := requireActiveEvent(ctx, b, e)
		if event == nil {
			return err
		}

		enrollment, err := b.ChallengeEventRepository.FindByCode(ctx, event.ID, code, "")
		if errors.Is(err, repositories.ErrChallengeNotEnrolled) {
			return utils.EH.CreateWarningEmbed(e, fmt.Sprintf("No active challenge with code `%s` in %s.", code, event.Name))
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the challenge.")
		}

		// The author always counts; partner mentions are deduped so a user
		// mentioned twice produces one record.
		party := []discord.User{e.User()}
		seen := map[int64]bool{int64(e.User().ID): true}
		for _, name := range []string{"partner1", "partner2", "partner3"} {
			if u, ok := data.OptUser(name); ok && !seen[int64(u.ID)] {
				seen[int64(u.ID)] = true
				party = append(party, u)
			}
		}

		userIDs := make([]int64, 0, len(party))
		names := make(map[int64]string, len(party))
		for _, u := range party {
			user, err := b.UserRepository.GetOrCreate(ctx, int64(u.ID), u.Username)
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to record the party.")
			}
			userIDs = append(userIDs, user.ID)
			names[user.ID] = user.Name
		}

		newlyDone, err := b.ChallengeEventRepository.Complete(ctx, enrollment.ID, userIDs)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to record the completions.")
		}

		newSet := make(map[int64]bool, len(newlyDone))
		for _, id := range newlyDone {
			newSet[id] = true
		}
		var credited, repeats []string
		for _, id := range userIDs {
			if newSet[id] {
				credited = append(credited, names[id])
			} else {
				repeats = append(repeats, names[id])
			}
		}

		title := enrollment.Challenge.Name
		if len(credited) == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("**%s** was already recorded for everyone listed.", title))
		}

		msg := fmt.Sprintf("**%s** conquered by %s!", title, strings.Join(credited, ", "))
		if len(repeats) > 0 {
			msg += fmt.Sprintf(" (already recorded for %s)", strings.Join(repeats, ", "))
		}
		return utils.EH.CreateSuccessEmbed(e, msg)
	}
}
