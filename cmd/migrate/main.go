// Применяет SQL-миграции из каталога migrations по порядку имён файлов.
// DSN берётся из переменной окружения DATABASE_DSN либо из конфига.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const defaultGlob = "migrations/*.sql"

func loadDSN() (string, error) {
	_ = godotenv.Load()

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn, nil
	}

	viper.SetConfigName("values_local")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	if err := viper.ReadInConfig(); err != nil {
		return "", errors.Wrap(err, "read config")
	}
	dsn := viper.GetString("db_dsn")
	if dsn == "" {
		return "", errors.New("no db_dsn in config")
	}
	return dsn, nil
}

func applyFile(ctx context.Context, pool *pgxpool.Pool, file string) error {
	sql, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "read migration")
	}
	if _, err = pool.Exec(ctx, string(sql)); err != nil {
		return errors.Wrapf(err, "apply %s", file)
	}
	return nil
}

func main() {
	ctx := context.Background()

	dsn, err := loadDSN()
	if err != nil {
		panic(fmt.Errorf("load dsn: %w", err))
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		panic(fmt.Errorf("connect: %w", err))
	}
	defer pool.Close()

	pattern := defaultGlob
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		panic(fmt.Errorf("get file glob: %w", err))
	}
	if len(files) == 0 {
		panic("no migration files matched " + pattern)
	}
	sort.Strings(files)

	for _, file := range files {
		if aErr := applyFile(ctx, pool, file); aErr != nil {
			panic(aErr)
		}
		fmt.Printf("%s file complete\n", file)
	}
	fmt.Println("done")
}
