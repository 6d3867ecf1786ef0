package repos

import (
	"database/sql/driver"
	"embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"

	"examapp/internal/domain"
	applog "examapp/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	// SQLite LOWER() only folds ASCII; catalog text is not ASCII-only.
	if err := sqlite.RegisterDeterministicScalarFunction("casefold", 1, casefold); err != nil {
		panic(err)
	}
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	if err := seedGroups(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	applog.L().Sugar().Infof(strings.TrimSpace(format), v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	applog.L().Sugar().Fatalf(strings.TrimSpace(format), v...)
}

func migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func seedGroups(db *sqlx.DB) error {
	for _, g := range []string{domain.RoleAdministrator, domain.RoleAuthorizedClient, domain.RoleManager} {
		if _, err := db.Exec(`INSERT INTO groups(name) VALUES(?) ON CONFLICT(name) DO NOTHING`, g); err != nil {
			return err
		}
	}
	return nil
}

// seedUsers ensures one account per role plus a blocked client (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Username, First, Last, Raw string
		Blocked                    bool
		Groups                     []string
	}
	users := []u{
		{"admin", "Anna", "Sokolova", "Passw0rd!", false, []string{domain.RoleAdministrator}},
		{"manager", "Pavel", "Orlov", "Passw0rd!", false, []string{domain.RoleManager}},
		{"client", "Irina", "Volkova", "Passw0rd!", false, []string{domain.RoleAuthorizedClient}},
		{"blocked", "", "", "Passw0rd!", true, []string{domain.RoleAuthorizedClient}},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		var n int
		if err := tx.Get(&n, `SELECT COUNT(*) FROM users WHERE username=?`, x.Username); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		res, err := tx.Exec(`INSERT INTO users(username,first_name,last_name,password_hash,blocked) VALUES(?,?,?,?,?)`,
			x.Username, x.First, x.Last, string(h), x.Blocked)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, g := range x.Groups {
			if _, err := tx.Exec(`INSERT INTO user_groups(user_id,group_id) SELECT ?, id FROM groups WHERE name=?`, id, g); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed: inserting demo catalog and orders")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO pickup_points(id,postal_index,city,street,building) VALUES
		  (1,'344288','Rostov-on-Don','Chekhova','1'),
		  (2,'614164','Perm','Stepnaya','30'),
		  (3,'394060','Voronezh','Frunze','43')`,
		`INSERT INTO producers(id,name) VALUES (1,'DNS'),(2,'Ozon'),(3,'Wildberries')`,
		`INSERT INTO manufacturers(id,name) VALUES (1,'Samsung'),(2,'Xiaomi'),(3,'Logitech')`,
		`INSERT INTO categories(id,name) VALUES (1,'Smartphones'),(2,'Accessories'),(3,'Audio')`,
		`INSERT INTO order_statuses(id,name) VALUES
		  (1,'New'),(2,'Assembling'),(3,'Ready for pickup'),(4,'Completed'),(5,'Cancelled')`,
		`INSERT INTO products(id,article,name,unit,price,producer_id,manufacturer_id,category_id,discount,amount_on_warehouse,description,image) VALUES
		  (1,'A112T4','Galaxy A15 smartphone','pcs',15990.00,1,1,1,5,12,'128 GB, dual SIM',''),
		  (2,'F635R4','Redmi Note 13','pcs',18990.00,2,2,1,0,3,'8/256 GB, AMOLED display',''),
		  (3,'H782T5','Wireless mouse M185','pcs',1290.00,3,3,2,15,40,'USB receiver, 12 months on one battery',''),
		  (4,'G783F5','Redmi Buds 5','pcs',3490.00,1,2,3,10,0,'Active noise cancelling',''),
		  (5,'J384T6','Keyboard K120','pcs',990.00,2,3,2,0,25,'Wired USB keyboard','')`,
		`INSERT INTO orders(number,article,quantity,order_date,delivery_date,pickup_point_id,client_id,code,status_id)
		  SELECT 1001,'A112T4',1,'2025-02-27','2025-03-04',1,id,'901',1 FROM users WHERE username='client'`,
		`INSERT INTO orders(number,article,quantity,order_date,delivery_date,pickup_point_id,client_id,code,status_id)
		  SELECT 1002,'H782T5',2,'2025-03-01','2025-03-06',2,id,'902',3 FROM users WHERE username='client'`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return tx.Commit()
}
