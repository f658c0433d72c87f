package main

import (
	"github.com/spf13/cobra"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>",
		Short: "Print chat overview: totals, top members and title history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			report, err := a.analyzer.Report(a.store)
			if err != nil {
				return err
			}
			return a.console.Export(cmd.OutOrStdout(), report)
		},
	}
}

func membersCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "members <file>",
		Short: "Rank members by number of messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			members, total, err := a.analyzer.Members(a.store)
			if err != nil {
				return err
			}
			if limit > 0 && len(members) > limit {
				members = members[:limit]
			}
			return a.console.WriteMembers(cmd.OutOrStdout(), members, total)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max members to print (0 = all)")

	return cmd
}

func forwardedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forwarded <file>",
		Short: "List forwarded messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			messages, err := a.analyzer.Forwarded(a.store)
			if err != nil {
				return err
			}
			return a.console.WriteForwarded(cmd.OutOrStdout(), messages)
		},
	}
}

func titlesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "titles <file>",
		Short: "Print group name history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			history, err := a.analyzer.Titles(a.store)
			if err != nil {
				return err
			}
			return a.console.WriteTitles(cmd.OutOrStdout(), history)
		},
	}
}

func messagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <file> <user-id>",
		Short: "Print all messages of one member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openChat(cmd, opts, args[0])
			if err != nil {
				return err
			}

			thread, err := a.analyzer.Thread(a.store, args[1])
			if err != nil {
				return err
			}
			return a.console.WriteThread(cmd.OutOrStdout(), thread)
		},
	}
}
