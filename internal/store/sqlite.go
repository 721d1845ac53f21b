package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/envelo-dev/envelo/internal/model"
)

// SQLite is the durable Store, a single-file database with the schema
// managed by embedded migrations.
type SQLite struct {
	db     *sql.DB
	closed bool
}

// Open creates the database directory if needed, opens the file and runs
// migrations. Environment failures (uncreatable directory, unwritable
// file) propagate unchanged.
func Open(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLite) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *SQLite) Budget(ctx context.Context, id string) (model.Budget, error) {
	if err := s.check(); err != nil {
		return model.Budget{}, err
	}
	var b model.Budget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, currency FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *SQLite) Budgets(ctx context.Context) ([]model.Budget, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, currency FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.Currency); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveBudget(ctx context.Context, b model.Budget) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, name, currency) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, currency = excluded.currency`,
		b.ID, b.Name, b.Currency)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteBudget(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *SQLite) Account(ctx context.Context, id string) (model.Account, error) {
	if err := s.check(); err != nil {
		return model.Account{}, err
	}
	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, budget_id, name, type FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.BudgetID, &a.Name, &a.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLite) Accounts(ctx context.Context, budgetID string) ([]model.Account, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, name, type FROM accounts WHERE budget_id = ? ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.BudgetID, &a.Name, &a.Type); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveAccount(ctx context.Context, a model.Account) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, budget_id, name, type) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET budget_id = excluded.budget_id,
		   name = excluded.name, type = excluded.type`,
		a.ID, a.BudgetID, a.Name, string(a.Type))
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteAccount(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *SQLite) Group(ctx context.Context, id string) (model.CategoryGroup, error) {
	if err := s.check(); err != nil {
		return model.CategoryGroup{}, err
	}
	var g model.CategoryGroup
	err := s.db.QueryRowContext(ctx,
		`SELECT id, budget_id, name, sort_order FROM category_groups WHERE id = ?`, id).
		Scan(&g.ID, &g.BudgetID, &g.Name, &g.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CategoryGroup{}, fmt.Errorf("category group %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.CategoryGroup{}, fmt.Errorf("get category group: %w", err)
	}
	return g, nil
}

func (s *SQLite) Groups(ctx context.Context, budgetID string) ([]model.CategoryGroup, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, name, sort_order FROM category_groups
		 WHERE budget_id = ? ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list category groups: %w", err)
	}
	defer rows.Close()

	var out []model.CategoryGroup
	for rows.Next() {
		var g model.CategoryGroup
		if err := rows.Scan(&g.ID, &g.BudgetID, &g.Name, &g.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveGroup(ctx context.Context, g model.CategoryGroup) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category_groups (id, budget_id, name, sort_order) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET budget_id = excluded.budget_id,
		   name = excluded.name, sort_order = excluded.sort_order`,
		g.ID, g.BudgetID, g.Name, g.SortOrder)
	if err != nil {
		return fmt.Errorf("save category group: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteGroup(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM category_groups WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category group: %w", err)
	}
	return nil
}

func scanCategory(scan func(dest ...any) error) (model.Category, error) {
	var c model.Category
	var created string
	if err := scan(&c.ID, &c.GroupID, &c.Name, &c.SortOrder, &created); err != nil {
		return model.Category{}, err
	}
	month, err := model.ParseMonth(created)
	if err != nil {
		return model.Category{}, fmt.Errorf("created_month: %w", err)
	}
	c.Created = month
	return c, nil
}

func (s *SQLite) Category(ctx context.Context, id string) (model.Category, error) {
	if err := s.check(); err != nil {
		return model.Category{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, sort_order, created_month FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *SQLite) Categories(ctx context.Context, budgetID string) ([]model.Category, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.group_id, c.name, c.sort_order, c.created_month
		 FROM categories c JOIN category_groups g ON c.group_id = g.id
		 WHERE g.budget_id = ? ORDER BY c.id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveCategory(ctx context.Context, c model.Category) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, group_id, name, sort_order, created_month) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET group_id = excluded.group_id, name = excluded.name,
		   sort_order = excluded.sort_order, created_month = excluded.created_month`,
		c.ID, c.GroupID, c.Name, c.SortOrder, c.Created.String())
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteCategory(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *SQLite) Payee(ctx context.Context, id string) (model.Payee, error) {
	if err := s.check(); err != nil {
		return model.Payee{}, err
	}
	var p model.Payee
	err := s.db.QueryRowContext(ctx,
		`SELECT id, budget_id, name FROM payees WHERE id = ?`, id).
		Scan(&p.ID, &p.BudgetID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payee{}, fmt.Errorf("payee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Payee{}, fmt.Errorf("get payee: %w", err)
	}
	return p, nil
}

func (s *SQLite) Payees(ctx context.Context, budgetID string) ([]model.Payee, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, name FROM payees WHERE budget_id = ? ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list payees: %w", err)
	}
	defer rows.Close()

	var out []model.Payee
	for rows.Next() {
		var p model.Payee
		if err := rows.Scan(&p.ID, &p.BudgetID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan payee: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) SavePayee(ctx context.Context, p model.Payee) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payees (id, budget_id, name) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET budget_id = excluded.budget_id, name = excluded.name`,
		p.ID, p.BudgetID, p.Name)
	if err != nil {
		return fmt.Errorf("save payee: %w", err)
	}
	return nil
}

func (s *SQLite) DeletePayee(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM payees WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete payee: %w", err)
	}
	return nil
}

func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var categoryID, payeeID, memo, transferAccountID sql.NullString
	var date string
	var cleared int
	err := scan(&t.ID, &t.AccountID, &categoryID, &payeeID, &date, &t.Amount,
		&cleared, &memo, &transferAccountID)
	if err != nil {
		return model.Transaction{}, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("txn_date: %w", err)
	}
	t.Date = d
	t.CategoryID = categoryID.String
	t.PayeeID = payeeID.String
	t.Memo = memo.String
	t.TransferAccountID = transferAccountID.String
	t.Cleared = cleared != 0
	return t, nil
}

const transactionCols = `id, account_id, category_id, payee_id, txn_date, amount, cleared, memo, transfer_account_id`

func (s *SQLite) Transaction(ctx context.Context, id string) (model.Transaction, error) {
	if err := s.check(); err != nil {
		return model.Transaction{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLite) Transactions(ctx context.Context, budgetID string) ([]model.Transaction, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.account_id, t.category_id, t.payee_id, t.txn_date, t.amount,
		   t.cleared, t.memo, t.transfer_account_id
		 FROM transactions t JOIN accounts a ON t.account_id = a.id
		 WHERE a.budget_id = ? ORDER BY t.txn_date, t.id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveTransaction(ctx context.Context, t model.Transaction) error {
	if err := s.check(); err != nil {
		return err
	}
	cleared := 0
	if t.Cleared {
		cleared = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET account_id = excluded.account_id,
		   category_id = excluded.category_id, payee_id = excluded.payee_id,
		   txn_date = excluded.txn_date, amount = excluded.amount,
		   cleared = excluded.cleared, memo = excluded.memo,
		   transfer_account_id = excluded.transfer_account_id`,
		t.ID, t.AccountID, nullable(t.CategoryID), nullable(t.PayeeID),
		t.Date.String(), t.Amount, cleared, nullable(t.Memo), nullable(t.TransferAccountID))
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// DeleteTransactions removes all ids in one database transaction, so a
// transfer never loses a single leg.
func (s *SQLite) DeleteTransactions(ctx context.Context, ids ...string) error {
	if err := s.check(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	for _, txnID := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, txnID); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete transaction %s: %w", txnID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func scanAssignment(scan func(dest ...any) error) (model.Assignment, error) {
	var a model.Assignment
	var month string
	if err := scan(&a.ID, &a.CategoryID, &month, &a.Amount); err != nil {
		return model.Assignment{}, err
	}
	m, err := model.ParseMonth(month)
	if err != nil {
		return model.Assignment{}, fmt.Errorf("month: %w", err)
	}
	a.Month = m
	return a, nil
}

func (s *SQLite) Assignment(ctx context.Context, id string) (model.Assignment, error) {
	if err := s.check(); err != nil {
		return model.Assignment{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, month, amount FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assignment{}, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *SQLite) AssignmentFor(ctx context.Context, categoryID string, month model.Month) (model.Assignment, error) {
	if err := s.check(); err != nil {
		return model.Assignment{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, month, amount FROM assignments
		 WHERE category_id = ? AND month = ?`, categoryID, month.String())
	a, err := scanAssignment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assignment{}, fmt.Errorf("assignment for category %s in %s: %w", categoryID, month, ErrNotFound)
	}
	if err != nil {
		return model.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *SQLite) Assignments(ctx context.Context, budgetID string) ([]model.Assignment, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.category_id, n.month, n.amount
		 FROM assignments n
		 JOIN categories c ON n.category_id = c.id
		 JOIN category_groups g ON c.group_id = g.id
		 WHERE g.budget_id = ? ORDER BY n.id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveAssignment(ctx context.Context, a model.Assignment) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, category_id, month, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET category_id = excluded.category_id,
		   month = excluded.month, amount = excluded.amount
		 ON CONFLICT (category_id, month) DO UPDATE SET amount = excluded.amount`,
		a.ID, a.CategoryID, a.Month.String(), a.Amount)
	if err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteAssignment(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

func scanTarget(scan func(dest ...any) error) (model.Target, error) {
	var t model.Target
	var targetDate sql.NullString
	if err := scan(&t.ID, &t.CategoryID, &t.Type, &t.Amount, &targetDate); err != nil {
		return model.Target{}, err
	}
	if targetDate.Valid {
		d, err := model.ParseDate(targetDate.String)
		if err != nil {
			return model.Target{}, fmt.Errorf("target_date: %w", err)
		}
		t.TargetDate = d
	}
	return t, nil
}

func (s *SQLite) Target(ctx context.Context, id string) (model.Target, error) {
	if err := s.check(); err != nil {
		return model.Target{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, type, amount, target_date FROM targets WHERE id = ?`, id)
	t, err := scanTarget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Target{}, fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Target{}, fmt.Errorf("get target: %w", err)
	}
	return t, nil
}

func (s *SQLite) Targets(ctx context.Context, budgetID string) ([]model.Target, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.category_id, t.type, t.amount, t.target_date
		 FROM targets t
		 JOIN categories c ON t.category_id = c.id
		 JOIN category_groups g ON c.group_id = g.id
		 WHERE g.budget_id = ? ORDER BY t.id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []model.Target
	for rows.Next() {
		t, err := scanTarget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveTarget(ctx context.Context, t model.Target) error {
	if err := s.check(); err != nil {
		return err
	}
	var targetDate any
	if !t.TargetDate.IsZero() {
		targetDate = t.TargetDate.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO targets (id, category_id, type, amount, target_date) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET category_id = excluded.category_id,
		   type = excluded.type, amount = excluded.amount, target_date = excluded.target_date`,
		t.ID, t.CategoryID, string(t.Type), t.Amount, targetDate)
	if err != nil {
		return fmt.Errorf("save target: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteTarget(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	return nil
}

var _ Store = (*SQLite)(nil)
