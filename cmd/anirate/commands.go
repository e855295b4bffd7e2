// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/browse"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/library"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/pkg/pointer"
)

const (
	envURL   = "ANIRATE_URL"
	envToken = "ANIRATE_TOKEN"

	defaultURL = "http://localhost:8080"

	// clientTimeout covers a full catalog walk on the server side.
	clientTimeout = 5 * time.Minute
)

// ratingNone clears a rating on the command line.
const ratingNone = "none"

// options are the persistent flags shared by every command.
type options struct {
	baseURL string
	token   string
}

func (o *options) api() library.API {
	return library.NewHTTPClient(o.baseURL, &http.Client{Timeout: clientTimeout})
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "anirate",
		Short:         "Browse and rate your anime watch list",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr(envURL, defaultURL), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(envToken), "Access token (required for rating)")

	cmd.AddCommand(listCmd(opts))
	cmd.AddCommand(rateCmd(opts))
	cmd.AddCommand(loginCmd(opts))
	cmd.AddCommand(verifyCmd(opts))
	cmd.AddCommand(whoamiCmd(opts))
	cmd.AddCommand(logoutCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// # Browsing

func listCmd(opts *options) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of the watch list",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedStatus, err := catalog.ParseStatus(status)
			if err != nil {
				return err
			}

			// Flags go through the same parser as the view endpoint.
			query := url.Values{}
			for _, name := range []string{browse.ParamSort, browse.ParamRating, browse.ParamSeason, browse.ParamPage, browse.ParamReverse} {
				if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
					query.Set(name, flag.Value.String())
				}
			}
			state, err := browse.ParseState(query)
			if err != nil {
				return err
			}

			lib := library.New(opts.api())
			if err := lib.Fetch(cmd.Context(), parsedStatus); err != nil {
				return err
			}
			lib.Update(func(current *browse.State) {
				current.SetSort(state.Sort)
				current.SetReverse(state.Reverse)
				current.SetRatingFilter(state.Rating)
				current.SetSeason(state.Season)
				current.SetPage(state.Page)
			})

			return printView(cmd, lib.View(), lib.Truncated())
		},
	}

	cmd.Flags().StringVar(&status, "status", string(catalog.DefaultStatus), "watched | watching")
	cmd.Flags().String(browse.ParamSort, string(browse.SortRecent), "recent | title")
	cmd.Flags().Bool(browse.ParamReverse, false, "Reverse the sort order")
	cmd.Flags().String(browse.ParamRating, string(browse.FilterAll), "all | favorite | recommended | unrated")
	cmd.Flags().String(browse.ParamSeason, browse.SeasonAll, "Season label, or all")
	cmd.Flags().Int(browse.ParamPage, 1, "Page number")

	return cmd
}

func printView(cmd *cobra.Command, view browse.View, truncated bool) error {
	out := cmd.OutOrStdout()
	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(writer, "ID\tTITLE\tSEASON\tRATING")
	for _, entry := range view.Animes {
		label := string(pointer.Val(entry.Rating))
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", entry.ID, entry.Title, entry.SeasonLabel(), label)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\npage %d/%d, %d entries\n", view.Meta.Page, max(view.Meta.TotalPages, 1), view.Meta.Total)
	if len(view.Seasons) > 0 {
		fmt.Fprintf(out, "seasons: %s\n", strings.Join(view.Seasons, ", "))
	}
	if truncated {
		fmt.Fprintln(out, "warning: the catalog has more entries than were fetched")
	}
	return nil
}

// # Rating

func rateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "rate <annict-id> <favorite|recommended|none>",
		Short:     "Set or clear the rating of an entry (admin only)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(rating.TagFavorite), string(rating.TagRecommended), ratingNone},
		RunE: func(cmd *cobra.Command, args []string) error {
			annictID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || annictID <= 0 {
				return fmt.Errorf("annict id must be a positive integer, got %q", args[0])
			}

			tag, err := parseTag(args[1])
			if err != nil {
				return err
			}

			lib := library.New(opts.api())
			if err := lib.Rate(cmd.Context(), opts.token, annictID, tag); err != nil {
				return explain(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rated %d: %s\n", annictID, args[1])
			return nil
		},
	}
}

func parseTag(raw string) (*rating.Tag, error) {
	if raw == ratingNone {
		return nil, nil
	}
	tag := rating.Tag(raw)
	if !tag.Valid() {
		return nil, fmt.Errorf("rating must be favorite, recommended or none, got %q", raw)
	}
	return &tag, nil
}

// # Session

func loginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Mail a sign-in link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := library.NewSession(opts.api())
			if err := session.RequestLogin(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "check your inbox, then run: anirate verify <token>")
			return nil
		},
	}
}

func verifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <login-token>",
		Short: "Redeem a sign-in link and print the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := library.NewSession(opts.api())
			credentials, err := session.Verify(cmd.Context(), args[0])
			if credentials == nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if session.NotAdmin() {
				fmt.Fprintf(out, "%s is not an administrator; the session was closed\n", credentials.Email)
				return nil
			}

			fmt.Fprintf(out, "signed in as %s (admin: %t)\n", credentials.Email, session.IsAdmin())
			fmt.Fprintf(out, "export %s=%s\n", envToken, credentials.AccessToken)
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check whether the access token belongs to an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			session := library.NewSession(opts.api())
			session.Restore(opts.token, "")
			if !session.IsAuthenticated() {
				fmt.Fprintln(out, "signed out")
				return nil
			}

			isAdmin, err := session.Refresh(cmd.Context())
			switch {
			case err != nil:
				return explain(err)
			case isAdmin:
				fmt.Fprintln(out, "admin")
			case session.NotAdmin():
				fmt.Fprintln(out, "not an administrator; the session was closed")
			}
			return nil
		},
	}
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session behind the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := library.NewSession(opts.api())
			session.Restore(opts.token, "")
			if err := session.SignOut(cmd.Context()); err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

// explain turns auth failures into actionable messages.
func explain(err error) error {
	if errors.Is(err, library.ErrNotSignedIn) {
		return fmt.Errorf("not signed in: set --token or %s", envToken)
	}

	var apiErr *library.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsUnauthenticated():
			return fmt.Errorf("sign in first (anirate login <email>): %w", err)
		case apiErr.IsForbidden():
			return fmt.Errorf("this account is not an administrator: %w", err)
		}
	}
	return err
}
