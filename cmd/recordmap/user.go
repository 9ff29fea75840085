package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recordmap/internal/model"
	"recordmap/internal/storage"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withUsers(cmd.Context(), true, func(*storage.Session, *model.UserStore) error {
				a.log.Info().Str("storage", a.cfg.Storage.Kind).Msg("user table ready")
				return nil
			})
		},
	}
}

// userFlags maps flag names onto user columns.
var userFlags = []struct{ flag, column, usage string }{
	{"first-name", "first_name", "first name"},
	{"last-name", "last_name", "last name"},
	{"email", "email", "email address"},
	{"gender", "gender", "gender"},
	{"ip-address", "ip_address", "IPv4 or IPv6 address"},
}

func addUserFlags(cmd *cobra.Command) {
	for _, f := range userFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

// changedColumns returns the user columns whose flags were set explicitly.
func changedColumns(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	for _, f := range userFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		out[f.column] = v
	}
	return out
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create, read, update and delete users",
	}
	cmd.AddCommand(
		newUserAddCmd(a),
		newUserGetCmd(a),
		newUserUpdateCmd(a),
		newUserDeleteCmd(a),
	)
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a user and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := func(name string) string { v, _ := cmd.Flags().GetString(name); return v }
			u := model.User{
				FirstName: f("first-name"),
				LastName:  f("last-name"),
				Email:     f("email"),
				Gender:    f("gender"),
				IPAddress: f("ip-address"),
			}
			return a.withUsers(cmd.Context(), a.cfg.Storage.AutoCreateTable, func(sess *storage.Session, users *model.UserStore) error {
				id, err := users.Add(cmd.Context(), sess.Ext(), &u)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	addUserFlags(cmd)
	return cmd
}

func newUserGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a user as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withUsers(cmd.Context(), a.cfg.Storage.AutoCreateTable, func(sess *storage.Session, users *model.UserStore) error {
				u, err := users.Get(cmd.Context(), sess.Ext(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, u)
			})
		},
	}
}

func newUserUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changes := changedColumns(cmd)
			if len(changes) == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}
			return a.withUsers(cmd.Context(), a.cfg.Storage.AutoCreateTable, func(sess *storage.Session, users *model.UserStore) error {
				u, err := users.Update(cmd.Context(), sess.Ext(), id, changes)
				if err != nil {
					return err
				}
				return printJSON(cmd, u)
			})
		},
	}
	addUserFlags(cmd)
	return cmd
}

func newUserDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withUsers(cmd.Context(), a.cfg.Storage.AutoCreateTable, func(sess *storage.Session, users *model.UserStore) error {
				if err := users.Delete(cmd.Context(), sess.Ext(), id); err != nil {
					return err
				}
				a.log.Info().Int64("id", id).Msg("user deleted")
				return nil
			})
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
