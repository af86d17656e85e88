package planning

import "fmt"

// priorityOrder sorts critical > high > medium > low > missing, then oldest first.
// table qualifies the columns when the query joins.
func priorityOrder(table string) string {
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	return fmt.Sprintf(
		"CASE %s WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, %s ASC, %s ASC",
		col("priority"), col("created_at"), col("id"),
	)
}
