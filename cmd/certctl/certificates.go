package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"certvault/client"
	"certvault/models"
	"certvault/verification"

	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your certificates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		certs, err := c.List(ctx)
		if err != nil {
			return err
		}
		if len(certs) == 0 {
			fmt.Fprintln(out(cmd), "No certificates yet")
			return nil
		}
		tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tINSTITUTION\tISSUED\tSTATUS\tMINTED")
		for _, cert := range certs {
			minted := "-"
			if cert.IsMinted() {
				minted = cert.NFTMintAddress
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cert.ID, cert.Title, cert.InstitutionName, cert.IssueDate, cert.VerificationStatus, minted)
		}
		return tw.Flush()
	},
}

func printCertificate(cmd *cobra.Command, cert *models.Certificate) {
	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", cert.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", cert.Title)
	fmt.Fprintf(tw, "Institution:\t%s\n", cert.InstitutionName)
	fmt.Fprintf(tw, "Program:\t%s\n", cert.ProgramName)
	fmt.Fprintf(tw, "Issued:\t%s\n", cert.IssueDate)
	fmt.Fprintf(tw, "Status:\t%s\n", cert.VerificationStatus)
	fmt.Fprintf(tw, "File:\t%s\n", cert.CertificateURL)
	fmt.Fprintf(tw, "Verification URL:\t%s\n", cert.VerificationURL)
	if cert.IsMinted() {
		fmt.Fprintf(tw, "Mint address:\t%s\n", cert.NFTMintAddress)
		fmt.Fprintf(tw, "Arweave:\t%s\n", cert.ArweaveURL)
	}
	_ = tw.Flush()
}

// watch polls the certificate until it leaves pending or the user interrupts.
// An interrupted watch also stops the server-side poller.
func watch(cmd *cobra.Command, c *client.Client, cert *models.Certificate) error {
	if cert.VerificationStatus.IsTerminal() {
		return nil
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out(cmd), "Waiting for verification of %s (Ctrl+C to stop)...\n", cert.ID)
	p := verification.NewPoller(cert.ID, cert.VerificationStatus, c, verification.PollerOptions{
		Interval: watchInterval,
		OnChange: func(s models.VerificationStatus) {
			fmt.Fprintf(out(cmd), "Status: %s\n", s)
		},
		Notifier: verification.NotifierFunc(func(_ context.Context, n models.Notification) {
			fmt.Fprintf(out(cmd), "%s: %s\n", n.Title, n.Message)
		}),
	})
	p.Start(ctx)

	select {
	case <-p.Done():
	case <-ctx.Done():
	}
	p.Stop()
	<-p.Done()
	if p.State() == verification.StateResolved {
		return nil
	}

	unwatchCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Unwatch(unwatchCtx, cert.ID); err != nil {
		return fmt.Errorf("stop watching %s: %w", cert.ID, err)
	}
	fmt.Fprintln(out(cmd), "Stopped watching")
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <certificate-id>",
	Short: "Show one certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		cert, err := c.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printCertificate(cmd, cert)

		if follow, _ := cmd.Flags().GetBool("watch"); follow {
			return watch(cmd, c, cert)
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Upload a certificate and start its verification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		title, _ := flags.GetString("title")
		institution, _ := flags.GetString("institution")
		program, _ := flags.GetString("program")
		date, _ := flags.GetString("date")
		path, _ := flags.GetString("file")

		c, _, err := authedClient()
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open certificate file: %w", err)
		}
		defer f.Close()

		ctx, cancel := newContext(cmd)
		defer cancel()

		cert, msg, err := c.Create(ctx, models.CertificateFields{
			Title:           title,
			InstitutionName: institution,
			ProgramName:     program,
			IssueDate:       date,
		}, filepath.Base(path), f)
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), msg)
		printCertificate(cmd, cert)

		if follow, _ := flags.GetBool("watch"); follow {
			return watch(cmd, c, cert)
		}
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <certificate-id>",
	Short: "Start or restart verification of a certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		cert, err := c.Verify(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Verification started for %s\n", cert.ID)

		if follow, _ := cmd.Flags().GetBool("watch"); follow {
			return watch(cmd, c, cert)
		}
		return nil
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint <certificate-id>",
	Short: "Mint a verified certificate as an NFT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		res, err := c.Mint(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Minted %s\nMint address: %s\nArweave: %s\n", args[0], res.MintAddress, res.ArweaveURL)
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs <certificate-id>",
	Short: "Show the verification history of a certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		logs, err := c.Logs(ctx, args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSTEP\tSTATUS\tDETAILS")
		for _, l := range logs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				l.CreatedAt.Local().Format(time.DateTime), l.VerificationStep, l.Status, string(l.Details))
		}
		return tw.Flush()
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <certificate-id>",
	Short: "Print the public link of a certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		link, err := c.Share(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), link.URL)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Summarize your certificates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		d, err := c.Dashboard(ctx)
		if err != nil {
			return err
		}
		notes, err := c.Notifications(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out(cmd), "Total %d  Verified %d  Pending %d  Rejected %d  Minted %d  This month %d\n",
			d.Total, d.Verified, d.Pending, d.Rejected, d.Minted, d.IssuedThisMonth)
		for _, n := range notes {
			fmt.Fprintf(out(cmd), "* %s: %s\n", n.Title, n.Message)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{showCmd, createCmd, verifyCmd} {
		cmd.Flags().Bool("watch", false, "follow verification until it completes")
	}
	rootCmd.PersistentFlags().DurationVar(&watchInterval, "watch-interval", verification.DefaultInterval, "status check interval of --watch")

	createCmd.Flags().String("title", "", "certificate title")
	createCmd.Flags().String("institution", "", "issuing institution")
	createCmd.Flags().String("program", "", "program or course name")
	createCmd.Flags().String("date", "", "issue date (YYYY-MM-DD)")
	createCmd.Flags().String("file", "", "certificate PDF or image")
	for _, name := range []string{"title", "institution", "program", "date", "file"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(listCmd, showCmd, createCmd, verifyCmd, mintCmd, logsCmd, shareCmd, dashboardCmd)
}
