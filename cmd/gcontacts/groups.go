package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List and edit contact groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the account's contact groups",
	RunE:  runGroupsList,
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new contact group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsCreate,
}

var groupsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a contact group",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupsRename,
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsDelete,
}

func runGroupsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	groups, err := client.Groups.List(ctx)
	if err != nil {
		return err
	}
	for _, group := range groups {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", group.ID, group.Title)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d group(s)\n", len(groups))
	return nil
}

func runGroupsCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	group, err := client.Groups.Create(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created group %s (%s)\n", group.ID, group.Title)
	return nil
}

func runGroupsRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	if err := client.Groups.Rename(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed group %s\n", args[0])
	return nil
}

func runGroupsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	if err := client.Groups.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
	return nil
}

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsRenameCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}
