package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/gallery"
	"gallery-portal/internal/platform/imaging"
	"gallery-portal/internal/toast"
)

func newImagesCmd(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "List, upload and delete your images",
	}
	cmd.AddCommand(newImagesListCmd(a), newImagesUploadCmd(a), newImagesDeleteCmd(a))
	return cmd
}

func newImagesListCmd(a func() *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			if err := app.gallery.LoadPage(cmd.Context(), page); err != nil {
				return sessionError(err)
			}
			printGallery(app, app.gallery.View())
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func printGallery(app *app, view gallery.View) {
	if len(view.Cards) == 0 {
		fmt.Fprintln(app.out, "No images")
		return
	}

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPLOADED\tURL")
	for _, c := range view.Cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Title, c.DateText, c.FileURL)
	}
	_ = tw.Flush() //nolint:errcheck // Terminal output

	p := view.Pagination
	fmt.Fprintf(app.out, "Page %d of %d (%d images)\n", p.CurrentPage, max(p.Pages, 1), p.Total)
}

func newImagesUploadCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:     "upload FILE...",
		Short:   "Upload image files",
		Example: `  galleryctl images upload holiday/*.jpg`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			files := make([]image.File, 0, len(args))
			for _, path := range args {
				f, err := readImageFile(path)
				if err != nil {
					app.notify.Show(fmt.Sprintf("Skipping %s: %v", path, err), toast.Error)
					continue
				}
				files = append(files, f)
			}

			res, err := app.gallery.Upload(cmd.Context(), files)
			if err != nil {
				return sessionError(err)
			}
			if res.Succeeded == 0 {
				return fmt.Errorf("no images uploaded")
			}
			return nil
		},
	}
}

// readImageFile loads path, sniffing the content type from its bytes
func readImageFile(path string) (image.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return image.File{}, err
	}
	return image.File{
		Name:        filepath.Base(path),
		ContentType: imaging.ContentType(data),
		Data:        data,
	}, nil
}

func newImagesDeleteCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete images by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil || id < 1 {
					return fmt.Errorf("invalid image id %q", arg)
				}
				ids = append(ids, id)
			}

			failed := 0
			for _, id := range ids {
				if err := app.client.DeleteImage(cmd.Context(), id); err != nil {
					if errors.Is(err, apiclient.ErrSessionExpired) {
						return ErrNotLoggedIn
					}
					app.logger.Warn(cmd.Context()).Err(err).Int("image_id", id).Msg("Delete failed")
					failed++
				}
			}

			if n := len(ids) - failed; n > 0 {
				app.notify.Show(fmt.Sprintf("Successfully deleted %d image(s)", n), toast.Success)
			}
			if failed > 0 {
				app.notify.Show(fmt.Sprintf("Failed to delete %d image(s)", failed), toast.Error)
				return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
			}
			return nil
		},
	}
}
