package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/config"
	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/dashboard"
	"github.com/Yvesthior/moncareme-agd/internal/tracker"
	"github.com/Yvesthior/moncareme-agd/internal/tui"
	"github.com/Yvesthior/moncareme-agd/pkg/jwt"
)

var tokenUser string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ouvrir le carnet interactif",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Afficher la semaine",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		day, err := parseWeek(weekFlag, time.Now())
		if err != nil {
			return err
		}
		api := newClient()
		dash := dashboard.New(api, day)
		if err := dash.Load(ctx); err != nil {
			logger.Error("加载周记录失败", zap.Error(err))
			return err
		}
		cat := resolveCatalog(ctx, api, cfg.Catalog.WakeupSpaceDay, logger)
		printWeek(cmd.OutOrStdout(), dash, cat)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Créer une nouvelle semaine",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseWeek(weekFlag, time.Now())
		if err != nil {
			return err
		}
		dash := dashboard.New(newClient(), day)
		if err := dash.CreateWeek(cmd.Context()); err != nil {
			logger.Error("创建周记录失败", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Semaine du %s créée\n", dash.RangeLabel())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Révoquer le jeton courant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Déconnexion effectuée")
		return nil
	},
}

// tokenCmd 用服务端密钥签发开发用 Token，生产环境由外部身份提供方签发
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Générer un jeton d'accès de développement",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		token, err := jwt.NewManager(&serverCfg.Auth).GenerateAccessToken(tokenUser)
		if err != nil {
			return fmt.Errorf("生成 Token 失败: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func runTUI(ctx context.Context) error {
	api := newClient()
	cat := resolveCatalog(ctx, api, cfg.Catalog.WakeupSpaceDay, logger)
	dash := dashboard.New(api, time.Now())
	return tui.Run(ctx, tui.New(ctx, dash, api, cat, nil))
}

func printWeek(w io.Writer, dash *dashboard.Dashboard, cat *catalog.Catalog) {
	fmt.Fprintf(w, "Semaine du %s\n\n", dash.RangeLabel())

	entry := dash.Entry()
	if entry == nil {
		fmt.Fprintln(w, "Aucune donnée pour cette semaine")
		return
	}

	fmt.Fprintf(w, "%-24s", "")
	for _, label := range catalog.DayLabels {
		fmt.Fprintf(w, "%-5s", string([]rune(label)[:3]))
	}
	fmt.Fprintln(w)

	for _, ex := range cat.All() {
		fmt.Fprintf(w, "%-24s", ex.Label)
		for day := 0; day < catalog.DaysPerWeek; day++ {
			mark := " "
			switch {
			case day < len(entry.Days) && entry.Days[day].Exercises[ex.ID]:
				mark = "x"
			case !ex.IsAvailable(day):
				mark = "·"
			}
			fmt.Fprintf(w, "%-5s", mark)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	draft := tracker.NewDraft(entry, cat, entry.StartDate)
	for _, f := range tracker.Fields {
		text := strings.TrimSpace(draft.Text(f))
		if text == "" {
			text = "-"
		}
		fmt.Fprintf(w, "%s : %s\n", tracker.FieldLabels[f], text)
	}
}
