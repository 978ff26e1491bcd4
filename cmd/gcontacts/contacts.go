package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	gcontacts "github.com/ilake/google-contacts-api"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List, inspect and edit contacts",
}

var contactsListSince string
var contactsListGroup string

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts on the account",
	RunE:  runContactsList,
}

var contactsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one contact in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsShow,
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a contact",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsDelete,
}

func runContactsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	var contacts []gcontacts.Contact
	if contactsListGroup != "" {
		contacts, err = client.Contacts.ListByGroup(ctx, contactsListGroup)
	} else {
		var opts *gcontacts.ListOptions
		if contactsListSince != "" {
			opts = &gcontacts.ListOptions{UpdatedMin: contactsListSince}
		}
		contacts, err = client.Contacts.List(ctx, opts)
	}
	if err != nil {
		return err
	}

	for _, contact := range contacts {
		email := ""
		if contact.PrimaryEmail != nil {
			email = fieldText(*contact.PrimaryEmail)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", contact.ID, contact.FullName, email)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d contact(s)\n", len(contacts))
	return nil
}

func runContactsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	contact, err := client.Contacts.Get(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", contact.ID)
	fmt.Fprintf(out, "Name:      %s\n", contact.FullName)
	if contact.Nickname != "" {
		fmt.Fprintf(out, "Nickname:  %s\n", contact.Nickname)
	}
	if contact.Birthday != "" {
		fmt.Fprintf(out, "Birthday:  %s\n", contact.Birthday)
	}
	printFields(out, "Email", contact.Emails)
	printFields(out, "Phone", contact.PhoneNumbers)
	printFields(out, "Address", contact.Addresses)
	printFields(out, "Website", contact.Websites)
	if len(contact.GroupIDs) > 0 {
		fmt.Fprintf(out, "Groups:    %v\n", contact.GroupIDs)
	}
	return nil
}

func runContactsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	if err := client.Contacts.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted contact %s\n", args[0])
	return nil
}

func printFields(out io.Writer, label string, fields []gcontacts.Field) {
	for _, field := range fields {
		marker := ""
		if field.Primary {
			marker = " (primary)"
		}
		fmt.Fprintf(out, "%s[%s]: %s%s\n", label, field.Type, fieldText(field), marker)
	}
}

// fieldText renders a field's value whether it was flattened to a scalar
// or kept as a structured map.
func fieldText(field gcontacts.Field) string {
	if s := field.Text(); s != "" {
		return s
	}
	return fmt.Sprintf("%v", field.Value)
}

func init() {
	contactsListCmd.Flags().StringVar(&contactsListSince, "since", "", "only contacts updated at or after this timestamp")
	contactsListCmd.Flags().StringVar(&contactsListGroup, "group", "", "only contacts in this group id")
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsShowCmd)
	contactsCmd.AddCommand(contactsDeleteCmd)
	rootCmd.AddCommand(contactsCmd)
}
