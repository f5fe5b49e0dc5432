package cogs

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/utils"
)

// highestRolePosition returns the position of the highest of roleIDs, 0 for @everyone only
func highestRolePosition(roles []*discordgo.Role, roleIDs []string) int {
	held := lo.Filter(roles, func(r *discordgo.Role, _ int) bool {
		return lo.Contains(roleIDs, r.ID)
	})
	if len(held) == 0 {
		return 0
	}
	return lo.MaxBy(held, func(a, b *discordgo.Role) bool { return a.Position > b.Position }).Position
}

// findMutedRole looks up the muted role id of a guild, through the role cache
func (b *Bot) findMutedRole(guildID string, roles []*discordgo.Role) (string, bool) {
	if id, ok := b.Roles.Get(guildID, utils.MutedRoleName); ok {
		if lo.ContainsBy(roles, func(r *discordgo.Role) bool { return r.ID == id }) {
			return id, true
		}
		b.Roles.Forget(guildID, utils.MutedRoleName)
	}

	role, ok := lo.Find(roles, func(r *discordgo.Role) bool { return r.Name == utils.MutedRoleName })
	if !ok {
		return "", false
	}
	b.Roles.Set(guildID, utils.MutedRoleName, role.ID)
	return role.ID, true
}

// ensureMutedRole finds the muted role or creates it with no permissions
func (b *Bot) ensureMutedRole(guildID string, roles []*discordgo.Role) (string, error) {
	if id, ok := b.findMutedRole(guildID, roles); ok {
		return id, nil
	}

	color := 0
	var perms int64
	role, err := b.Session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        utils.MutedRoleName,
		Color:       &color,
		Permissions: &perms,
	})
	if err != nil {
		return "", err
	}
	utils.BotLogf("MUTE", "Created %q role %s in guild %s", utils.MutedRoleName, role.ID, guildID)
	b.Roles.Set(guildID, utils.MutedRoleName, role.ID)
	return role.ID, nil
}
