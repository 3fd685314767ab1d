/*
Package txnimport loads a CSV export of financial transactions into an
Elasticsearch index.

The import is a short pipeline of distinct stages:

1. Source

   A Source opens a CSV input (local file, HTTP URL or S3 object) and reads
   it into Rows. Each Row keeps the header it was read under, so columns can
   be looked up by name.

2. Normalizer

   The Normalizer turns a Row into a Document with the fixed transaction
   schema. Which source columns feed which field, how values are coerced and
   what happens when no usable value exists are all described by a field
   table (see DefaultFields). Normalization never fails: any required field
   that can't be read from the row gets a synthetic value derived from the
   row's position.

3. Batcher

   The Batcher groups Documents, in order, into Batches of a fixed size.

4. Destination

   A Destination (see the elastic package) is the search cluster. It is
   checked for reachability, provisioned with a fresh index, loaded one Batch
   at a time and finally queried to verify how many documents it holds.

The Importer drives these stages and produces a Result summarizing the run.
*/
package txnimport
