package engines

import _ "github.com/Aleph-Alpha/sqlstd/v1/sqlite"
