package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gojoyas/config"
	"gojoyas/internal/client/backend"
	"gojoyas/internal/domain"
	"gojoyas/internal/ledger"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pricing"
	"gojoyas/internal/store"
	"gojoyas/internal/worker/liveness"
)

const usage = `uso: admin <comando> [flags]

comandos:
  report             ocupação dos armazéns, itens abaixo do mínimo e descontos vigentes
  expenses           lista despesas (-category, -warehouse)
  watch              mantém os descontos atualizados e monitora o endpoint de liveness
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Usando apenas o ambiente do sistema.")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.LoadClientConfig()
	log := logger.NewLogger(cfg.LogLevel)

	client := backend.New(cfg.BackendURL, log,
		backend.WithToken(cfg.BackendToken),
		backend.WithTimeout(cfg.RequestTimeout),
	)
	st := store.New(client, log, store.WithDiscountTTL(cfg.DiscountStaleTTL))
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "report":
		err = runReport(ctx, st)
	case "expenses":
		err = runExpenses(ctx, client, os.Args[2:])
	case "watch":
		err = runWatch(ctx, cfg, st, log)
	default:
		fmt.Fprintf(os.Stderr, "comando desconhecido: %s\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

// runReport carrega armazéns e descontos em paralelo e imprime o resumo.
func runReport(ctx context.Context, st *store.Store) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return st.LoadWarehouses(gctx) })
	g.Go(func() error {
		_, err := st.RefreshDiscounts(gctx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARMAZÉM\tSTATUS\tOCUPAÇÃO\t%\tEM ESTOQUE\tBAIXO\tESGOTADO")
	for _, w := range st.Warehouses() {
		r := ledger.Report(w)
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\t%d\t%d\t%d\n",
			w.Name, w.Status, r.CurrentOccupancy, r.Capacity, r.OccupancyPercent,
			r.InStock, r.LowStock, r.OutOfStock)
	}
	tw.Flush()

	for _, w := range st.Warehouses() {
		low := ledger.LowStockItems(w)
		if len(low) == 0 {
			continue
		}
		fmt.Printf("\n%s: itens a repor\n", w.Name)
		for _, it := range low {
			fmt.Printf("  %-12s qtd=%d mínimo=%d (%s)\n", it.SKU, it.Quantity, it.MinimumStock, it.Status)
		}
	}

	active := pricing.ActiveRules(st.Discounts(), time.Now())
	fmt.Printf("\nDescontos vigentes: %d\n", len(active))
	for _, r := range active {
		fmt.Printf("  %-12s %s %s\n", r.Code, r.Kind, r.Value.String())
	}
	return nil
}

func runExpenses(ctx context.Context, client *backend.Client, args []string) error {
	fs := flag.NewFlagSet("expenses", flag.ExitOnError)
	category := fs.String("category", "", "filtra por categoria")
	warehouseID := fs.String("warehouse", "", "filtra por ID do armazém")
	fs.Parse(args)

	expenses, err := client.ListExpenses(ctx, domain.ExpenseFilter{Category: *category, WarehouseID: *warehouseID})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATA\tCATEGORIA\tDESCRIÇÃO\tVALOR")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.IncurredAt.Format("2006-01-02"), e.Category, e.Description, e.Amount.StringFixed(2))
	}
	return tw.Flush()
}

// runWatch roda o refresher de descontos e o poller de liveness até um sinal de encerramento.
func runWatch(ctx context.Context, cfg *config.ClientConfig, st *store.Store, log logger.Logger) error {
	if _, err := st.RefreshDiscounts(ctx, true); err != nil {
		log.Warn("Primeira carga de descontos falhou. O refresher tentará de novo.", map[string]interface{}{"error": err.Error()})
	}
	st.StartDiscountRefresher(ctx, cfg.DiscountStaleTTL)

	if cfg.LivenessURL != "" {
		poller := liveness.New(cfg.LivenessURL, cfg.LivenessInterval, log)
		go poller.Run(ctx)
	}

	log.Info("Monitorando. Ctrl+C para sair.", map[string]interface{}{
		"backend":       cfg.BackendURL,
		"discount_ttl":  cfg.DiscountStaleTTL.String(),
		"liveness_url":  cfg.LivenessURL,
		"liveness_each": cfg.LivenessInterval.String(),
	})
	<-ctx.Done()
	log.Info("Encerrando monitoramento.", nil)
	return nil
}
