package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"tsound-server/config"
	dbPkg "tsound-server/pkg/db"

	_ "github.com/go-sql-driver/mysql"
)

// autoIncrementTables 带自增主键、清空后需要重置计数的表
var autoIncrementTables = map[string]bool{"users": true, "track_likes": true}

func main() {
	cfg := config.LoadConfig()
	if cfg.Database.Driver != "mysql" && cfg.Database.Driver != "" {
		log.Fatalf("reset_db only supports mysql, got driver %q", cfg.Database.Driver)
	}

	dsn := cfg.Database.DSN
	if dsn == "" {
		dsn = dbPkg.MySQLDSN(cfg.Database)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	// 子表在前
	tables := []string{"messages", "chats", "comments", "track_likes", "tracks", "users"}
	if t := cfg.Database.AuthUsersTable; t != "" && t != "users" {
		tables = append(tables, t)
	}

	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
	fmt.Print("Type 'YES' to confirm: ")
	confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(confirm) != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	failed := 0
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := db.Exec("DELETE FROM " + quoteTable(table)); err != nil {
			failed++
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		fmt.Println("Success")

		if autoIncrementTables[table] || table == cfg.Database.AuthUsersTable {
			if _, err := db.Exec("ALTER TABLE " + quoteTable(table) + " AUTO_INCREMENT = 1"); err != nil {
				fmt.Printf("Resetting %s auto-increment failed: %v\n", table, err)
			}
		}
	}

	if failed > 0 {
		fmt.Printf("\nDatabase reset finished with %d failures\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
}

// quoteTable 给表名加反引号，支持 schema.table 形式
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}
