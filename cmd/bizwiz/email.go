package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bizwiz/adapters/mail"
	"bizwiz/internal/config"
	"bizwiz/internal/email"
	"bizwiz/internal/errors"

	"github.com/spf13/cobra"
)

// senderFactory picks how a message leaves the process. Tests swap it for a
// mock.
type senderFactory func(cfg config.SMTPConfig, draft string, timeout time.Duration) (mail.Sender, error)

// defaultSender writes a draft when a path is given and sends over SMTP
// otherwise
func defaultSender(cfg config.SMTPConfig, draft string, timeout time.Duration) (mail.Sender, error) {
	if draft != "" {
		return &mail.DraftWriter{Path: draft, From: cfg.From}, nil
	}
	return mail.NewSMTPSender(cfg, timeout)
}

func (a *app) newEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Compose and send HTML report emails",
	}
	cmd.AddCommand(a.newEmailSendCmd())
	return cmd
}

func (a *app) newEmailSendCmd() *cobra.Command {
	var (
		to, cc, bodies, images, tables, attachments []string
		subject, intro, markdownFile                string
		salutation, signature, draft                string
		timeout                                     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build an HTML email from text, markdown, images and tables, then send it",
		Long: `Sections are added in this order: introduction, --body paragraphs, the
--body-md file, --image files, --table files, then the sign-off. Tables are
read from CSV, Excel or Parquet files.

With --draft the message is written to an .eml file instead of being sent.

Example: bizwiz email send --to team@example.com --subject "Weekly sales" \
           --body-md notes.md --image chart.png --table totals.csv --attach sales.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := composeReport(intro, bodies, markdownFile, images, tables, salutation, signature)
			if err != nil {
				return err
			}
			msg := mail.Message{
				To:          to,
				Cc:          cc,
				Subject:     subject,
				HTML:        html,
				Attachments: attachments,
			}
			if err := msg.Validate(); err != nil {
				return err
			}

			sender, err := a.newSender(a.cfg.SMTP, draft, timeout)
			if err != nil {
				return err
			}
			if err := sender.Send(cmd.Context(), msg); err != nil {
				return err
			}
			if draft != "" {
				a.success("Draft written to %s", draft)
			} else {
				a.success("Email sent to %d recipient(s)", len(to)+len(cc))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "Cc address (repeatable)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&intro, "intro", "", "Greeting line; defaults to \""+email.DefaultIntroduction+"\"")
	cmd.Flags().StringArrayVar(&bodies, "body", nil, "Paragraph of plain text (repeatable)")
	cmd.Flags().StringVar(&markdownFile, "body-md", "", "Markdown file rendered into the body")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Image to embed inline (repeatable)")
	cmd.Flags().StringArrayVar(&tables, "table", nil, "Data file to embed as a table (repeatable)")
	cmd.Flags().StringArrayVar(&attachments, "attach", nil, "File to attach (repeatable)")
	cmd.Flags().StringVar(&salutation, "salutation", "", "Closing line")
	cmd.Flags().StringVar(&signature, "signature", "", "Name under the closing line")
	cmd.Flags().StringVar(&draft, "draft", "", "Write an .eml draft here instead of sending")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "SMTP dial and send timeout")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// composeReport assembles the message body in flag order
func composeReport(intro string, bodies []string, markdownFile string, images, tables []string, salutation, signature string) (string, error) {
	c := email.NewComposer().Introduction(intro)
	for _, body := range bodies {
		c.Body(body)
	}
	if markdownFile != "" {
		md, err := os.ReadFile(markdownFile)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFound(fmt.Sprintf("markdown file %s", markdownFile))
			}
			return "", fmt.Errorf("failed to read %s: %w", markdownFile, err)
		}
		c.Markdown(string(md))
	}
	for _, path := range images {
		if err := c.EmbedImage("", path, filepath.Base(path), 0, 0); err != nil {
			return "", err
		}
	}
	for _, path := range tables {
		df, err := readFrame(path)
		if err != nil {
			return "", err
		}
		if err := c.EmbedTable(filepath.Base(path), df); err != nil {
			return "", err
		}
	}
	return c.Compose(salutation, signature), nil
}
