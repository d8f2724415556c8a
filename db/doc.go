/*
 *  Copyright 2021 CommonDAO
 *  This file is part of the governance-backend library.
 *
 *  The governance-backend library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  The governance-backend library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 *  GNU Lesser General Public License for more details.
 *
 *  You should have received a copy of the GNU Lesser General Public License
 *  along with the governance-backend library. If not, see <http://www.gnu.org/licenses/>.
 */

// Package db implements how the governance backend stores and retrieves the
// archived ballot state. Supported storage: mongoDB
package db

/*
The archive is written by a single indexer goroutine draining the engine
journal, so write batches stay small and every write is an upsert keyed by
a natural id (proposal id, participant address, journal seq). Replaying the
same journal range after a restart must therefore be a no-op.
*/
