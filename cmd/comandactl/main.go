// Command comandactl runs maintenance tasks against the comanda database:
// seeding the first admin, listing accounts, printing the shared waiter password, replaying the
// stock ledger and inspecting the report DLQ.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"comanda/internal/config"
	"comanda/internal/dto"
	"comanda/internal/infra"
	"comanda/internal/model"
	"comanda/internal/repository"
	"comanda/internal/service"
	"comanda/internal/worker"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var cfg *config.Config

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := &cobra.Command{
		Use:           "comandactl",
		Short:         "Tarefas de manutenção do backend comanda",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real env vars win.
			_ = godotenv.Load()
			var err error
			cfg, err = config.Load()
			return err
		},
	}
	root.AddCommand(seedAdminCmd(), usuariosCmd(), senhaGarcomCmd(), reconciliarCmd(), dlqCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

func seedAdminCmd() *cobra.Command {
	var nome string
	cmd := &cobra.Command{
		Use:   "seed-admin <email> <senha>",
		Short: "Cria o usuário admin, ou redefine a senha se ele já existir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			return seedAdmin(cmd.Context(), db, args[0], args[1], nome)
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "Administrador", "nome exibido")
	return cmd
}

func seedAdmin(ctx context.Context, db *gorm.DB, email, senha, nome string) error {
	repo := repository.NewUsuarioRepository(db)
	email = strings.ToLower(strings.TrimSpace(email))

	existente, err := repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u, err := service.NewAuthService(repo, cfg).CriarUsuario(ctx, dto.CriarUsuarioRequest{
			Email: email,
			Nome:  nome,
			Senha: senha,
			Papel: model.PapelAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Printf("admin %s criado (%s)\n", u.Email, u.ID)
		return nil
	}
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), 12)
	if err != nil {
		return err
	}
	existente.PasswordHash = string(hash)
	existente.Papel = model.PapelAdmin
	existente.Ativo = true
	if err := repo.Update(ctx, existente); err != nil {
		return err
	}
	fmt.Printf("senha do admin %s redefinida\n", existente.Email)
	return nil
}

func usuariosCmd() *cobra.Command {
	var papel string
	cmd := &cobra.Command{
		Use:   "usuarios",
		Short: "Lista as contas cadastradas",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			us, err := repository.NewUsuarioRepository(db).List(cmd.Context(), papel)
			if err != nil {
				return err
			}
			out := make([]dto.UsuarioResponse, 0, len(us))
			for _, u := range us {
				out = append(out, dto.UsuarioResponse{
					ID: u.ID.String(), Email: u.Email, Nome: u.Nome, Papel: u.Papel, Ativo: u.Ativo,
				})
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&papel, "papel", "", "filtra por papel (admin | garcom)")
	return cmd
}

func senhaGarcomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "senha-garcom [url]",
		Short: "Mostra o login compartilhado de garçom para a URL pública",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := cfg.PublicURL
			if len(args) == 1 {
				url = args[0]
			}
			fmt.Printf("email: %s\nsenha: %s\n", service.EmailGarcom(url), service.SenhaGarcom(url))
			return nil
		},
	}
}

func reconciliarCmd() *cobra.Command {
	var corrigir bool
	cmd := &cobra.Command{
		Use:   "reconciliar",
		Short: "Refaz o estoque a partir do ledger e lista as divergências",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			estoque := service.NewEstoqueService(
				repository.NewProdutoRepository(db),
				repository.NewMovimentoEstoqueRepository(db),
				service.NewProdutoCache(nil),
			)
			rel, err := estoque.Reconciliar(cmd.Context(), corrigir)
			if err != nil {
				return err
			}
			return printJSON(rel)
		},
	}
	cmd.Flags().BoolVar(&corrigir, "corrigir", false, "reescreve o estoque dos produtos divergentes")
	return cmd
}

func dlqCmd() *cobra.Command {
	var requeue bool
	var limit int64
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Lista (ou reenfileira) os relatórios de turno que falharam",
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb, err := infra.NewRedis(cfg.RedisURL)
			if err != nil {
				return err
			}
			if rdb == nil {
				return errors.New("REDIS_URL não configurada")
			}
			defer rdb.Close()

			if requeue {
				n, err := worker.RequeueDLQ(cmd.Context(), rdb, worker.QueueRelatorioTurno)
				if err != nil {
					return err
				}
				fmt.Printf("%d job(s) reenfileirado(s)\n", n)
				return nil
			}
			entries, err := worker.ListDLQ(cmd.Context(), rdb, worker.QueueRelatorioTurno, limit)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	}
	cmd.Flags().BoolVar(&requeue, "requeue", false, "devolve todos os jobs para a fila")
	cmd.Flags().Int64Var(&limit, "limit", 20, "quantidade máxima listada")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
