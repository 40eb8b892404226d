package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
	"github.com/templui/securedocs/internal/service"
	"github.com/templui/securedocs/internal/validation"
)

func MintCmd() *cobra.Command {
	var (
		documentID string
		action     string
		fileIndex  int
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print a signed view or download URL for a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := model.ParseAction(action)
			if err != nil {
				return err
			}

			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.SecureLinkTTL
			}
			if err := validation.CheckLinkTTL(ttl); err != nil {
				return err
			}

			codec := service.NewTokenCodec(cfg.SecureLinkSecret)
			docs := repository.NewDocumentRepository(database)
			return mintLink(cmd.OutOrStdout(), docs, codec, cfg.AppURL, documentID, parsed, fileIndex, ttl)
		},
	}

	cmd.Flags().StringVar(&documentID, "doc", "", "document id")
	cmd.Flags().StringVar(&action, "action", string(model.ActionView), "view or download")
	cmd.Flags().IntVar(&fileIndex, "file", 0, "file index for download links")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "link lifetime (default SECURE_LINK_TTL)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func mintLink(
	out io.Writer,
	docs repository.DocumentRepository,
	codec *service.TokenCodec,
	baseURL, documentID string,
	action model.Action,
	fileIndex int,
	ttl time.Duration,
) error {
	doc, err := docs.ByID(documentID)
	if err != nil {
		return fmt.Errorf("loading document %s: %w", documentID, err)
	}

	if action == model.ActionDownload {
		if _, ok := doc.File(fileIndex); !ok {
			return fmt.Errorf("document %s has no file at index %d", documentID, fileIndex)
		}
	} else {
		fileIndex = 0
	}

	token, err := codec.Encode(doc.ID, action, fileIndex, ttl)
	if err != nil {
		return err
	}

	link := service.ViewURL(baseURL, token)
	if action == model.ActionDownload {
		link = service.DownloadURL(baseURL, token)
	}

	fmt.Fprintln(out, link)
	return nil
}
