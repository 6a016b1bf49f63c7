//go:build !nomysql

package engines

import _ "github.com/Aleph-Alpha/sqlstd/v1/mariadb"
